package emit

import "astc/token"

// EmissionError is a semantic problem discovered during lowering that
// prevents correct code from being produced for one subtree: a construct
// the lowering does not implement (address-of, dereference, subscripts,
// member access, unsupported operators), a break or continue outside a
// loop, or an assignment to a non-identifier. Emission continues past it, matching the
// parser's recovery style (spec.md §4.4, §7).
type EmissionError struct {
	Position token.Position
	Message  string
}

func (e *EmissionError) Error() string {
	return e.Position.String() + ": emission error: " + e.Message
}

// EmissionWarning records a non-fatal construct: an undeclared identifier
// reference, resolved to a sentinel slot so emission can continue.
type EmissionWarning struct {
	Position token.Position
	Message  string
}

func (e *EmissionWarning) Error() string {
	return e.Position.String() + ": warning: " + e.Message
}
