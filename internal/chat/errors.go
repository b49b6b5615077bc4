package chat

import "errors"

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("bad arguments")
	ErrCommandFailed  = errors.New("command failed")
)
