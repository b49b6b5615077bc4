package script

import "errors"

var (
	ErrBadScriptName = errors.New("script file name is not an event id")
	ErrNoScriptDir   = errors.New("script dir not configured")
)
