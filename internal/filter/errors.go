package filter

import "fmt"

// InvalidPatternError indicates an exclude pattern that is not a valid regular expression
type InvalidPatternError struct {
	Pattern string
	Err     error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid exclude pattern %q: %v", e.Pattern, e.Err)
}

func (e *InvalidPatternError) Unwrap() error {
	return e.Err
}
