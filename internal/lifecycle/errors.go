package lifecycle

import "errors"

// Ошибки валидации переходов. Ни одна из них не сопровождается мутацией.
var (
	ErrUnauthorized      = errors.New("actor is not allowed to perform this action")
	ErrInvalidState      = errors.New("action is not allowed in the current contract state")
	ErrRepeatedAction    = errors.New("party has already committed a final action")
	ErrNotResolvable     = errors.New("contract is not resolvable")
	ErrInvalidRate       = errors.New("service rate must be non-negative")
	ErrInvalidAction     = errors.New("unknown contract action")
	ErrInvalidResolution = errors.New("unknown dispute resolution")
)
