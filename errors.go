package prodcons

import "errors"

const Namespace = "prodcons"

var (
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
	ErrAlreadyRun    = errors.New(Namespace + ": pipeline has already been run")
)
