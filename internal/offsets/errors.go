package offsets

import "fmt"

// DecodeError indicates a key that is truncated or otherwise malformed
type DecodeError struct {
	Field  string
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode offsets key: %s at byte %d: %s", e.Field, e.Offset, e.Reason)
}
