package versioned

import (
	"fmt"
	"reflect"
)

// DefaultTag is the wire key carrying the version of an envelope.
const DefaultTag = "_version"

// RepSuffix is appended to the domain name to name its envelope.
const RepSuffix = "Versions"

// Config describes a versioned type. It is checked once by Define.
type Config struct {
	// Name of the domain type, defaults to the Go type name.
	Name string
	// Rep names the envelope, defaults to Name + RepSuffix.
	Rep string
	// Mode is a mode keyword, "infallible" or "fallible". Empty selects
	// DefaultMode.
	Mode string
	// Error is the error type returned by fallible steps. Required in
	// fallible mode and ignored otherwise.
	Error reflect.Type
	// Tag is the wire key of the version discriminant, defaults to DefaultTag.
	Tag string
	// Transparent enables direct wire encoding of the domain type.
	Transparent bool
}

// ErrorOf returns the reflect type of E for Config.Error.
func ErrorOf[E error]() reflect.Type {
	return reflect.TypeFor[E]()
}

// Migration converts a payload of one version into the domain type.
type Migration[D any] func(payload any) (D, error)

// Chain is a validated version chain for the domain type D. It is immutable
// and safe for concurrent use.
type Chain[D any] struct {
	config   Config
	mode     Mode
	shapes   []reflect.Type
	steps    []Step
	project  Step
	composed []Migration[D]
}

// Define validates a chain and precomputes the composed migration of every
// version. steps are step functions (or Step values) in chain order: the
// input of step i is version i, the output of the last step is D. project
// converts D, or *D, into the latest version.
func Define[D any](cfg Config, project any, steps ...any) (*Chain[D], error) {
	domain := reflect.TypeFor[D]()
	if cfg.Name == "" {
		cfg.Name = domain.Name()
	}

	c, err := define[D](cfg, domain, project, steps)
	if err != nil {
		return nil, &DefinitionError{Domain: cfg.Name, Err: err}
	}

	return c, nil
}

// MustDefine is like Define but panics on an invalid definition. It is meant
// for package level variables.
func MustDefine[D any](cfg Config, project any, steps ...any) *Chain[D] {
	c, err := Define[D](cfg, project, steps...)
	if err != nil {
		panic(err)
	}

	return c
}

func define[D any](cfg Config, domain reflect.Type, project any, steps []any) (*Chain[D], error) {
	if len(steps) == 0 {
		return nil, ErrEmptyChain
	}

	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	cfg.Mode = mode.Keyword()
	if cfg.Rep == "" {
		cfg.Rep = cfg.Name + RepSuffix
	}

	if cfg.Tag == "" {
		cfg.Tag = DefaultTag
	}

	if mode == ModeFallible {
		if cfg.Error == nil {
			return nil, ErrMissingErrorType
		}

		if !cfg.Error.Implements(errorType) {
			return nil, fmt.Errorf("%w: %s does not implement error", ErrErrorType, cfg.Error)
		}
	} else {
		cfg.Error = nil
	}

	c := &Chain[D]{
		config: cfg,
		mode:   mode,
		shapes: make([]reflect.Type, 0, len(steps)),
		steps:  make([]Step, 0, len(steps)),
	}

	for i, fn := range steps {
		s, err := ParseStep(fn)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}

		if err := c.checkStep(i+1, s); err != nil {
			return nil, err
		}

		c.shapes = append(c.shapes, s.From)
		c.steps = append(c.steps, s)
	}

	if last := c.steps[len(c.steps)-1]; last.To != domain {
		return nil, fmt.Errorf("%w: last step produces %s, expected %s", ErrBrokenChain, typeName(last.To), domain)
	}

	c.project, err = ParseStep(project)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadProjection, err)
	}

	latest := c.shapes[len(c.shapes)-1]
	switch {
	case c.project.Fallible():
		return nil, fmt.Errorf("%w: %s must not fail", ErrBadProjection, c.project)
	case c.project.From != domain && c.project.From != reflect.PointerTo(domain):
		return nil, fmt.Errorf("%w: %s takes %s", ErrBadProjection, c.project, typeName(c.project.From))
	case c.project.To != latest:
		return nil, fmt.Errorf("%w: %s returns %s, expected %s", ErrBadProjection, c.project, typeName(c.project.To), latest)
	}

	c.composed = make([]Migration[D], len(c.steps))
	for i := range c.steps {
		c.composed[i] = c.compose(i + 1)
	}

	return c, nil
}

func (c *Chain[D]) checkStep(pos int, s Step) error {
	if s.Fallible() {
		if c.mode == ModeInfallible {
			return fmt.Errorf("step %d (%s): %w", pos, s, ErrFallibleStep)
		}

		if !s.Err.AssignableTo(c.config.Error) {
			return fmt.Errorf("step %d (%s): %w: %s is not %s", pos, s, ErrErrorType, s.Err, c.config.Error)
		}
	}

	if pos > 1 {
		prev := c.steps[pos-2]
		if prev.To != s.From {
			return fmt.Errorf("%w: step %d produces %s but step %d takes %s",
				ErrBrokenChain, pos-1, typeName(prev.To), pos, typeName(s.From))
		}
	}

	for i, shape := range c.shapes {
		if shape == s.From {
			return fmt.Errorf("%w: %s appears at versions %d and %d", ErrBrokenChain, shape, i+1, pos)
		}
	}

	return nil
}

// compose builds the migration from version start to D. Steps run in
// ascending order and the first failure stops the chain.
func (c *Chain[D]) compose(start int) Migration[D] {
	steps := c.steps[start-1:]
	shape := c.shapes[start-1]

	return func(payload any) (D, error) {
		var zero D

		if t := reflect.TypeOf(payload); t != shape {
			return zero, fmt.Errorf("%w: version %d expects %s, got %s", ErrShapeMismatch, start, shape, typeName(t))
		}

		cur := payload
		for k, s := range steps {
			next, err := s.apply(cur)
			if err != nil {
				return zero, StepFailed(c.config.Name, start+k, shapeName(s.From), shapeName(s.To), err)
			}

			cur = next
		}

		return cur.(D), nil
	}
}

// Config returns the definition with defaults applied.
func (c *Chain[D]) Config() Config { return c.config }

// Mode returns the parsed mode.
func (c *Chain[D]) Mode() Mode { return c.mode }

// Len returns the number of versions.
func (c *Chain[D]) Len() int { return len(c.shapes) }

// Current returns the latest version number.
func (c *Chain[D]) Current() int { return len(c.shapes) }

// Shape returns the type of version i, or nil when i is out of range.
func (c *Chain[D]) Shape(i int) reflect.Type {
	if i < 1 || i > len(c.shapes) {
		return nil
	}

	return c.shapes[i-1]
}

// IndexOf returns the version whose shape is t.
func (c *Chain[D]) IndexOf(t reflect.Type) (int, bool) {
	for i, shape := range c.shapes {
		if shape == t {
			return i + 1, true
		}
	}

	return 0, false
}

// Compose returns the migration from version i to D.
func (c *Chain[D]) Compose(i int) (Migration[D], error) {
	if i < 1 || i > len(c.composed) {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrVersionOutOfRange, i, len(c.composed))
	}

	return c.composed[i-1], nil
}

// Migrate converts payload, a value of version i, into D.
func (c *Chain[D]) Migrate(i int, payload any) (D, error) {
	m, err := c.Compose(i)
	if err != nil {
		var zero D
		return zero, err
	}

	return m(payload)
}

// Project converts d into a value of the latest version. It panics if d
// is nil.
func (c *Chain[D]) Project(d *D) any {
	if d == nil {
		panic(fmt.Sprintf("versioned: project nil *%s", c.config.Name))
	}

	var (
		out any
		err error
	)

	if c.project.From.Kind() == reflect.Pointer {
		out, err = c.project.apply(d)
	} else {
		out, err = c.project.apply(*d)
	}

	if err != nil {
		// total by construction, see Define
		panic(err)
	}

	return out
}
