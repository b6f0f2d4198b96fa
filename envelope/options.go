package envelope

import "go.uber.org/zap"

// Observer is notified of every conversion. Implementations must be safe
// for concurrent use.
type Observer interface {
	Decoded(domain string, version int)
	Migrated(domain string, from int, err error)
	Encoded(domain string, version int)
}

type nopObserver struct{}

func (nopObserver) Decoded(string, int)         {}
func (nopObserver) Migrated(string, int, error) {}
func (nopObserver) Encoded(string, int)         {}

type options struct {
	logger   *zap.Logger
	observer Observer
}

// Option configures a Codec.
type Option func(*options)

// WithLogger logs conversions on logger. Decode, migrate and encode are
// logged at debug level, failed migrations at warn level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver reports conversions to observer.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:   zap.NewNop(),
		observer: nopObserver{},
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
