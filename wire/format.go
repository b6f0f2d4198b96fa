package wire

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// Format is a structured serialization layer able to carry a version tag
// next to the payload fields.
type Format interface {
	// Name identifies the format in errors and logs.
	Name() string
	// Marshal encodes v.
	Marshal(v any) ([]byte, error)
	// Unmarshal decodes data into v, ignoring fields v does not declare.
	Unmarshal(data []byte, v any) error
	// EncodeTagged encodes payload as a flat object with key set to tag.
	EncodeTagged(key, tag string, payload any) ([]byte, error)
	// DecodeTag returns the value of key in the flat object data.
	DecodeTag(data []byte, key string) (string, error)
}

var (
	ErrMissingTag     = errors.New("missing version tag")
	ErrInvalidTag     = errors.New("version tag must be a string or an integer")
	ErrUnknownVersion = errors.New("unknown version")
	ErrNotObject      = errors.New("payload is not an object")
	ErrTagConflict    = errors.New("payload already has a field named like the version tag")
	ErrUnknownFormat  = errors.New("unknown wire format")
)

// Error is the single error type reported by wire operations. Op is
// "encode" or "decode".
type Error struct {
	Format string
	Op     string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Format, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Operations reported by Error.
const (
	OpEncode = "encode"
	OpDecode = "decode"
)

// Wrap reports err as a failure of op on format f. A nil err stays nil and
// an *Error is returned unchanged. An error that merely wraps an *Error is
// wrapped again.
func Wrap(f Format, op string, err error) error {
	if err == nil {
		return nil
	}

	if _, ok := err.(*Error); ok {
		return err
	}

	return &Error{Format: f.Name(), Op: op, Err: err}
}

// FormatVersion returns the canonical tag of version v.
func FormatVersion(v int) string {
	return strconv.Itoa(v)
}

// ParseVersion parses a canonical tag and checks it lies within
// [1, current]. Signs and leading zeros are rejected.
func ParseVersion(tag string, current int) (int, error) {
	v, err := strconv.Atoi(tag)
	if err != nil || v < 1 || v > current || tag != FormatVersion(v) {
		return 0, fmt.Errorf("%w %q, expected 1..%d", ErrUnknownVersion, tag, current)
	}

	return v, nil
}

// DecodeVersion reads the version tag of data.
func DecodeVersion(f Format, data []byte, key string, current int) (int, error) {
	tag, err := f.DecodeTag(data, key)
	if err != nil {
		return 0, Wrap(f, OpDecode, err)
	}

	v, err := ParseVersion(tag, current)
	if err != nil {
		return 0, Wrap(f, OpDecode, err)
	}

	return v, nil
}

// DecodePayload decodes the fields of data into the shape pointed to by v.
func DecodePayload(f Format, data []byte, v any) error {
	return Wrap(f, OpDecode, f.Unmarshal(data, v))
}

// Encode writes payload tagged with version.
func Encode(f Format, key string, version int, payload any) ([]byte, error) {
	data, err := f.EncodeTagged(key, FormatVersion(version), payload)
	if err != nil {
		return nil, Wrap(f, OpEncode, err)
	}

	return data, nil
}

var formats = map[string]func() Format{
	"json": JSON,
	"yaml": YAML,
	"toml": TOML,
}

// ByName returns the format registered as name.
func ByName(name string) (Format, error) {
	f, ok := formats[name]
	if !ok {
		return nil, fmt.Errorf("%w %q, expected one of %v", ErrUnknownFormat, name, Names())
	}

	return f(), nil
}

// Names lists the registered format names.
func Names() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// tagString accepts the tag representations produced by generic decoders.
func tagString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case uint64:
		return strconv.FormatUint(t, 10), nil
	default:
		return "", ErrInvalidTag
	}
}
