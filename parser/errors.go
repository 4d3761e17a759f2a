package parser

import "astc/token"

// SyntaxError is a recoverable parse error: an unexpected token at a
// known position. The parser records these, attempts recovery (see
// synchronize), and continues — it does not abort on the first one
// (spec.md §4.2 "failure semantics").
type SyntaxError struct {
	Position token.Position
	Message  string
	Lexeme   string
}

func (e *SyntaxError) Error() string {
	if e.Lexeme != "" {
		return e.Position.String() + ": syntax error: " + e.Message + " (got " + e.Lexeme + ")"
	}
	return e.Position.String() + ": syntax error: " + e.Message
}

// SemanticWarning describes a non-fatal construct accepted syntactically
// but not fully resolvable (spec.md §7). The parser itself never
// constructs one; undeclared identifiers are reported by the emitter as
// emit.EmissionWarning.
type SemanticWarning struct {
	Position token.Position
	Message  string
}

func (e *SemanticWarning) Error() string {
	return e.Position.String() + ": warning: " + e.Message
}
