package unpack

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// group is one DIGITS[BODY] unit found at a scan position.
type group struct {
	count    int
	body     string // between the outer brackets, inner groups verbatim
	nested   bool
	consumed int // first digit through the matching ']'
}

// readGroup reads the group whose first digit is at s[start]. s must be
// valid; on malformed text it panics with an index out of range.
func readGroup(s string, start int) (group, error) {
	pos := start
	for isDigit(s[pos]) {
		pos++
	}
	count, err := strconv.Atoi(s[start:pos])
	if err != nil {
		return group{}, fmt.Errorf("%w: %s", ErrCountOutOfRange, s[start:pos])
	}

	pos++ // '['
	bodyStart := pos
	depth, nested := 1, false
	for depth > 0 {
		switch s[pos] {
		case openBracket:
			depth++
			nested = true
		case closeBracket:
			depth--
		}
		pos++
	}

	return group{
		count:    count,
		body:     s[bodyStart : pos-1],
		nested:   nested,
		consumed: pos - start,
	}, nil
}

// Expand returns the unpacked form of input.
//
// input must have been accepted by Validate. Expand does not check this:
// on malformed text it either panics or returns meaningless output. It also
// panics with ErrCountOutOfRange when a repeat count does not fit in an int,
// and with ErrLengthOverflow when the output length would not; use Unpack to
// get an error instead.
func Expand(input string) string {
	out, err := expand(input)
	if err != nil {
		panic(err)
	}
	return out
}

func expand(input string) (string, error) {
	var b strings.Builder
	for pos := 0; pos < len(input); {
		if !isDigit(input[pos]) {
			b.WriteByte(input[pos])
			pos++
			continue
		}

		g, err := readGroup(input, pos)
		if err != nil {
			return "", err
		}
		body := g.body
		if g.nested {
			if body, err = expand(body); err != nil {
				return "", err
			}
		}
		if len(body) > 0 && g.count > (math.MaxInt-b.Len())/len(body) {
			return "", ErrLengthOverflow
		}
		b.WriteString(strings.Repeat(body, g.count))
		pos += g.consumed
	}
	return b.String(), nil
}
