package envelope

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"evolve-generator/versioned"
	"evolve-generator/wire"
)

var (
	ErrUnknownShape   = errors.New("value is not a version of the chain")
	ErrEmptyEnvelope  = errors.New("envelope holds no version")
	ErrNotTransparent = errors.New("transparent encoding is not enabled")
)

// Codec converts between wire bytes, envelopes and the domain type D. It is
// immutable and safe for concurrent use.
type Codec[D any] struct {
	chain  *versioned.Chain[D]
	format wire.Format
	name   string
	tag    string
	opts   options
}

// New returns a codec for chain that delegates byte encoding to format.
func New[D any](chain *versioned.Chain[D], format wire.Format, opts ...Option) *Codec[D] {
	cfg := chain.Config()

	o := newOptions(opts)
	o.logger = o.logger.With(
		zap.String("domain", cfg.Name),
		zap.String("envelope", cfg.Rep),
		zap.String("format", format.Name()),
	)

	return &Codec[D]{
		chain:  chain,
		format: format,
		name:   cfg.Name,
		tag:    cfg.Tag,
		opts:   o,
	}
}

// Chain returns the chain the codec dispatches to.
func (c *Codec[D]) Chain() *versioned.Chain[D] { return c.chain }

// Format returns the wire format.
func (c *Codec[D]) Format() wire.Format { return c.format }

// Current returns the latest version.
func (c *Codec[D]) Current() int { return c.chain.Current() }

// Version returns the version of e.
func (c *Codec[D]) Version(e Envelope) int { return e.version }

// IsCurrent reports whether e holds the latest version.
func (c *Codec[D]) IsCurrent(e Envelope) bool { return e.version == c.chain.Current() }

// Wrap puts a version shape value into its envelope.
func (c *Codec[D]) Wrap(payload any) (Envelope, error) {
	v, ok := c.chain.IndexOf(reflect.TypeOf(payload))
	if !ok {
		return Envelope{}, fmt.Errorf("%w: %T in %s", ErrUnknownShape, payload, c.name)
	}

	return c.envelope(v, payload), nil
}

// Decode reads an envelope. The version tag selects the shape the fields
// are decoded into; unknown tags fail here, as a *wire.Error.
func (c *Codec[D]) Decode(data []byte) (Envelope, error) {
	v, err := wire.DecodeVersion(c.format, data, c.tag, c.chain.Current())
	if err != nil {
		return Envelope{}, err
	}

	ptr := reflect.New(c.chain.Shape(v))
	if err := wire.DecodePayload(c.format, data, ptr.Interface()); err != nil {
		return Envelope{}, err
	}

	c.opts.observer.Decoded(c.name, v)
	c.opts.logger.Debug("decoded envelope", zap.Int("version", v))

	return c.envelope(v, ptr.Elem().Interface()), nil
}

// Encode writes e as a flat object tagged with its version.
func (c *Codec[D]) Encode(e Envelope) ([]byte, error) {
	if err := c.check(e); err != nil {
		return nil, wire.Wrap(c.format, wire.OpEncode, err)
	}

	data, err := wire.Encode(c.format, c.tag, e.version, e.payload)
	if err != nil {
		return nil, err
	}

	c.opts.observer.Encoded(c.name, e.version)
	c.opts.logger.Debug("encoded envelope", zap.Int("version", e.version))

	return data, nil
}

// ToDomain migrates the payload of e into D. In fallible mode the error of
// the first failing step is returned as a *versioned.MigrationError.
func (c *Codec[D]) ToDomain(e Envelope) (D, error) {
	if err := c.check(e); err != nil {
		var zero D
		return zero, err
	}

	d, err := c.chain.Migrate(e.version, e.payload)
	c.opts.observer.Migrated(c.name, e.version, err)

	if err != nil {
		c.opts.logger.Warn("migration failed", zap.Int("version", e.version), zap.Error(err))
		return d, err
	}

	if e.version != c.chain.Current() {
		c.opts.logger.Debug("migrated envelope",
			zap.Int("from", e.version), zap.Int("to", c.chain.Current()))
	}

	return d, nil
}

// FromDomain projects d onto the latest version. d must not be nil.
func (c *Codec[D]) FromDomain(d *D) Envelope {
	return c.envelope(c.chain.Current(), c.chain.Project(d))
}

// Load decodes data and migrates it into D. Decode failures are
// *wire.Error values, migration failures *versioned.MigrationError values.
func (c *Codec[D]) Load(data []byte) (D, error) {
	e, err := c.Decode(data)
	if err != nil {
		var zero D
		return zero, err
	}

	return c.ToDomain(e)
}

// Store writes d in the latest version.
func (c *Codec[D]) Store(d *D) ([]byte, error) {
	return c.Encode(c.FromDomain(d))
}

// Transparent returns the direct D <-> bytes adapter. The definition must
// enable transparent encoding.
func (c *Codec[D]) Transparent() (*Transparent[D], error) {
	if !c.chain.Config().Transparent {
		return nil, fmt.Errorf("%w for %s", ErrNotTransparent, c.name)
	}

	return &Transparent[D]{codec: c}, nil
}

func (c *Codec[D]) envelope(version int, payload any) Envelope {
	return Envelope{version: version, current: c.chain.Current(), payload: payload}
}

func (c *Codec[D]) check(e Envelope) error {
	if e.version == 0 {
		return ErrEmptyEnvelope
	}

	if shape := c.chain.Shape(e.version); shape == nil || reflect.TypeOf(e.payload) != shape {
		return fmt.Errorf("%w: version %d of %s holds %T", versioned.ErrShapeMismatch, e.version, c.name, e.payload)
	}

	return nil
}
