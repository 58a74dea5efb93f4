package viewport

import "fmt"

// InvalidSeriesError reports a series selection that names no series of
// the current batch.
type InvalidSeriesError struct {
	Key string
}

func (e *InvalidSeriesError) Error() string {
	return fmt.Sprintf("no series %q in current batch", e.Key)
}

// DecodeError reports that a stack could not be displayed: the requested
// slice and every fallback candidate failed to decode.
type DecodeError struct {
	Series string
	Index  int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("display series %q slice %d: %v", e.Series, e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// InitializationError reports that the rendering engine could not be
// created or is not attached.
type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string {
	if e.Err == nil {
		return "rendering engine not attached"
	}
	return fmt.Sprintf("initialize rendering engine: %v", e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }
