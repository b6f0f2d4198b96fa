package wire

import (
	"bytes"

	json "github.com/goccy/go-json"
)

type jsonFormat struct{}

// JSON returns the JSON format.
func JSON() Format { return jsonFormat{} }

func (jsonFormat) Name() string { return "json" }

func (jsonFormat) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonFormat) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// EncodeTagged merges the tag into the payload object. Fields are kept as raw
// messages so numbers are written back with their exact text.
func (jsonFormat) EncodeTagged(key, tag string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	fields, err := jsonObject(raw)
	if err != nil {
		return nil, err
	}

	if _, ok := fields[key]; ok {
		return nil, ErrTagConflict
	}

	fields[key], err = json.Marshal(tag)
	if err != nil {
		return nil, err
	}

	return json.Marshal(fields)
}

func (jsonFormat) DecodeTag(data []byte, key string) (string, error) {
	fields, err := jsonObject(data)
	if err != nil {
		return "", err
	}

	raw, ok := fields[key]
	if !ok {
		return "", ErrMissingTag
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return tagString(n)
	}

	return "", ErrInvalidTag
}

func jsonObject(data []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotObject
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, err
	}

	return fields, nil
}
