package unpack

import "math/bits"

// Stats describes a packed text without expanding it.
type Stats struct {
	Groups      int    `json:"groups"`
	MaxDepth    int    `json:"max_depth"`
	PackedLen   int    `json:"packed_len"`
	UnpackedLen uint64 `json:"unpacked_len"`
}

// Analyze validates input and computes its Stats. Only lengths are
// multiplied, so it is safe on inputs whose expansion would not fit in memory.
func Analyze(input string) (Stats, error) {
	if err := Validate(input).Err(); err != nil {
		return Stats{}, err
	}

	st := Stats{PackedLen: len(input)}
	n, err := measure(input, 1, &st)
	if err != nil {
		return Stats{}, err
	}
	st.UnpackedLen = n
	return st, nil
}

// measure mirrors expand, counting instead of building output. Every group
// is read exactly once, as in expand.
func measure(input string, depth int, st *Stats) (uint64, error) {
	var n uint64
	for pos := 0; pos < len(input); {
		if !isDigit(input[pos]) {
			n++
			pos++
			continue
		}

		g, err := readGroup(input, pos)
		if err != nil {
			return 0, err
		}
		st.Groups++
		st.MaxDepth = max(st.MaxDepth, depth)

		body := uint64(len(g.body))
		if g.nested {
			if body, err = measure(g.body, depth+1, st); err != nil {
				return 0, err
			}
		}
		hi, lo := bits.Mul64(body, uint64(g.count))
		if hi != 0 || n+lo < n {
			return 0, ErrLengthOverflow
		}
		n += lo
		pos += g.consumed
	}
	return n, nil
}
