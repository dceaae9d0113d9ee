package unpack

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput           = errors.New("must contain non-whitespace characters")
	ErrLeadingCharacter     = errors.New("first character must be a letter or digit")
	ErrUnsupportedCharacter = errors.New("unsupported character")
	ErrBracketImbalance     = errors.New("invalid bracket positioning")
	ErrCharacterAdjacency   = errors.New("invalid character positioning")

	ErrCountOutOfRange = errors.New("repeat count out of range")
	ErrLengthOverflow  = errors.New("unpacked length overflows")
)

// Kind identifies which validation rule rejected an input.
type Kind uint8

const (
	KindNone Kind = iota
	KindEmptyInput
	KindLeadingCharacter
	KindUnsupportedCharacter
	KindBracketImbalance
	KindCharacterAdjacency
)

var kindNames = [...]string{
	KindNone:                 "none",
	KindEmptyInput:           "empty_input",
	KindLeadingCharacter:     "leading_character",
	KindUnsupportedCharacter: "unsupported_character",
	KindBracketImbalance:     "bracket_imbalance",
	KindCharacterAdjacency:   "character_adjacency",
}

var kindErrors = [...]error{
	KindEmptyInput:           ErrEmptyInput,
	KindLeadingCharacter:     ErrLeadingCharacter,
	KindUnsupportedCharacter: ErrUnsupportedCharacter,
	KindBracketImbalance:     ErrBracketImbalance,
	KindCharacterAdjacency:   ErrCharacterAdjacency,
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Sentinel returns the package error for k, or nil for KindNone.
func (k Kind) Sentinel() error {
	if int(k) < len(kindErrors) {
		return kindErrors[k]
	}
	return nil
}

// Result is the outcome of Validate. The zero value is not meaningful;
// obtain one from Validate.
type Result struct {
	kind  Kind
	input string
}

func (r Result) Valid() bool { return r.kind == KindNone }

func (r Result) Kind() Kind { return r.kind }

// Message is the human-readable reason for rejection, empty when valid.
func (r Result) Message() string {
	if err := r.kind.Sentinel(); err != nil {
		return err.Error()
	}
	return ""
}

// Err returns nil for a valid result and a *ValidationError otherwise.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationError{Kind: r.kind, Input: r.input}
}

// ValidationError reports rejected input. It unwraps to the sentinel of its Kind.
type ValidationError struct {
	Kind  Kind
	Input string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid packed text %q: %s", e.Input, e.Kind.Sentinel())
}

func (e *ValidationError) Unwrap() error {
	return e.Kind.Sentinel()
}

// Reason returns the diagnostic for an Unpack or Analyze error without the
// quoted input, for output that already shows the input next to it.
func Reason(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Kind.Sentinel().Error()
	}
	return err.Error()
}
