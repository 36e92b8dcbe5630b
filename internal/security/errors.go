package security

import "errors"

// Validation errors. ErrWrongType covers inputs of the wrong dynamic type
// (the scripting boundary delivers JSON-decoded `any` values), ErrInvalidValue
// covers well-typed inputs outside their declared constraints. The bridge
// maps these onto the closed error-kind enumeration it exposes to scripts.
var (
	ErrWrongType    = errors.New("wrong input type")
	ErrInvalidValue = errors.New("invalid input value")
)
