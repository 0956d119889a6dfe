package dripper

import "errors"

// ConvertFunc transforms a descended value. Its errors propagate to the caller.
type ConvertFunc func(value any) (any, error)

// ScalarOption configures a Scalar.
type ScalarOption func(*Scalar)

// WithDefault sets the value returned when the path does not resolve.
func WithDefault(v any) ScalarOption {
	return func(s *Scalar) {
		s.def = v
		s.hasDefault = true
	}
}

// WithConverter sets a function applied to every successfully descended value.
// Defaults are returned as given and never converted.
func WithConverter(fn ConvertFunc) ScalarOption {
	return func(s *Scalar) {
		s.convert = fn
	}
}

// Scalar digs a single path out of a document.
type Scalar struct {
	path       Path
	convert    ConvertFunc
	def        any
	hasDefault bool
}

// NewScalar creates a scalar extractor for path.
func NewScalar(path Path, opts ...ScalarOption) *Scalar {
	s := &Scalar{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the path the scalar descends.
func (s *Scalar) Path() Path { return s.path }

// Lookup descends the path. ok is false when the path does not resolve and no
// default is configured; err is only ever a converter failure.
func (s *Scalar) Lookup(doc any) (value any, ok bool, err error) {
	v, err := Descend(doc, s.path)
	if err != nil {
		if !errors.Is(err, ErrDescent) {
			return nil, false, err
		}
		if s.hasDefault {
			return cloneValue(s.def), true, nil
		}
		return nil, false, nil
	}

	if s.convert != nil {
		v, err = s.convert(v)
		if err != nil {
			return nil, false, err
		}
	}
	return v, true, nil
}

// Extract returns the descended value, the default, or Absent.
func (s *Scalar) Extract(doc any) (any, error) {
	v, ok, err := s.Lookup(doc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Absent, nil
	}
	return v, nil
}

// Plus combines the scalar with other using Add.
func (s *Scalar) Plus(other Extractor) *Combined {
	return Combine(Add, s, other)
}
