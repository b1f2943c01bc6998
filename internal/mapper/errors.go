package mapper

import "errors"

// ErrAlreadyStarted is returned when Run is called more than once
var ErrAlreadyStarted = errors.New("mapper: already started")
