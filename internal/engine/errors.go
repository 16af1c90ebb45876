package engine

import "fmt"

// LoadErrorKind distinguishes why a dataset failed to load.
type LoadErrorKind int

const (
	LoadNotFound LoadErrorKind = iota
	LoadParse
	LoadSchema
)

func (k LoadErrorKind) String() string {
	switch k {
	case LoadNotFound:
		return "not found"
	case LoadParse:
		return "parse"
	case LoadSchema:
		return "schema"
	default:
		return "unknown"
	}
}

// LoadError reports a failed dataset load. Callers inspect Kind to
// distinguish a missing file from a malformed one.
type LoadError struct {
	Kind LoadErrorKind
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Path, e.Kind)
}

func (e *LoadError) Unwrap() error { return e.Err }

// TransformError reports an invalid transform request, typically a
// column that is not part of the loaded schema.
type TransformError struct {
	Column string
	Reason string
}

func (e *TransformError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("transform: column %q: %s", e.Column, e.Reason)
	}
	return "transform: " + e.Reason
}
