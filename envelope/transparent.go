package envelope

import "evolve-generator/wire"

// Transparent encodes the domain type directly. It routes through the same
// envelope and chain as its Codec but never exposes the envelope. Every
// failure is a *wire.Error, migration failures included.
type Transparent[D any] struct {
	codec *Codec[D]
}

// Marshal writes d in the latest version.
func (t *Transparent[D]) Marshal(d *D) ([]byte, error) {
	return t.codec.Store(d)
}

// Unmarshal decodes data of any known version into D.
func (t *Transparent[D]) Unmarshal(data []byte) (D, error) {
	d, err := t.codec.Load(data)
	if err != nil {
		var zero D
		return zero, wire.Wrap(t.codec.format, wire.OpDecode, err)
	}

	return d, nil
}
