package dberrors

import "errors"

var (
	ErrClosed          = errors.New("javelin: closed")
	ErrInvalidArgument = errors.New("javelin: invalid argument")
)
