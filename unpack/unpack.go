// Package unpack validates and expands packed text of the form LETTER or
// DIGITS[BODY], where BODY may contain further groups:
//
//	a3[bc]4[d]e  ->  abcbcbcdddde
//	2[3[x]y]     ->  xxxyxxxy
//
// Validate must accept an input before Expand is called on it. All functions
// are pure and safe for concurrent use.
//
// The expanded text can be exponentially longer than its packed form and no
// cap is applied. Callers that accept untrusted input should check
// Analyze(input).UnpackedLen first.
package unpack

// Unpack validates input and expands it. Failures are *ValidationError
// values, ErrCountOutOfRange for a count that does not fit in an int, or
// ErrLengthOverflow when the unpacked length does not fit in an int.
func Unpack(input string) (string, error) {
	if err := Validate(input).Err(); err != nil {
		return "", err
	}
	return expand(input)
}
