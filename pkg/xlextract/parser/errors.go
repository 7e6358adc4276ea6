package parser

import "fmt"

// MalformedDrawingError reports a drawing fragment that could not be parsed.
// It never aborts an extraction; callers downgrade it to "no position".
type MalformedDrawingError struct {
	Part string
	Err  error
}

func (e *MalformedDrawingError) Error() string {
	return fmt.Sprintf("malformed drawing %s: %v", e.Part, e.Err)
}

func (e *MalformedDrawingError) Unwrap() error {
	return e.Err
}
