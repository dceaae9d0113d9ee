package unpack

const (
	openBracket  = '['
	closeBracket = ']'
)

type class uint8

const (
	classOther class = iota
	classDigit
	classLetter
	classOpen
	classClose
	numClasses
)

// follows[cur][next] reports whether next may directly follow cur.
var follows = [numClasses][numClasses]bool{
	classDigit:  {classDigit: true, classOpen: true},
	classLetter: {classDigit: true, classLetter: true, classClose: true},
	classOpen:   {classDigit: true, classLetter: true},
	classClose:  {classDigit: true, classLetter: true, classClose: true},
}

func classify(c byte) class {
	switch {
	case isDigit(c):
		return classDigit
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		return classLetter
	case c == openBracket:
		return classOpen
	case c == closeBracket:
		return classClose
	default:
		return classOther
	}
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// Validate checks that input can be passed to Expand. Rules are applied in a
// fixed order and only the first failure is reported.
func Validate(input string) Result {
	kind := check(input)
	return Result{kind: kind, input: input}
}

// isBlank reports whether input holds only bytes at or below ' ', which
// covers ASCII whitespace and control characters.
func isBlank(input string) bool {
	for i := 0; i < len(input); i++ {
		if input[i] > ' ' {
			return false
		}
	}
	return true
}

func check(input string) Kind {
	if isBlank(input) {
		return KindEmptyInput
	}
	if c := input[0]; c == openBracket || c == closeBracket {
		return KindLeadingCharacter
	}
	if !charactersSupported(input) {
		return KindUnsupportedCharacter
	}
	if !bracketsBalanced(input) {
		return KindBracketImbalance
	}
	if !adjacencyValid(input) {
		return KindCharacterAdjacency
	}
	return KindNone
}

func charactersSupported(input string) bool {
	for i := 0; i < len(input); i++ {
		if classify(input[i]) == classOther {
			return false
		}
	}
	return true
}

func bracketsBalanced(input string) bool {
	open := 0
	for i := 0; i < len(input); i++ {
		switch input[i] {
		case openBracket:
			open++
		case closeBracket:
			if open == 0 {
				return false
			}
			open--
		}
	}
	return open == 0
}

// adjacencyValid assumes charactersSupported already holds. A trailing '['
// is caught by bracketsBalanced, so only a trailing digit is checked here.
func adjacencyValid(input string) bool {
	for i := 0; i+1 < len(input); i++ {
		if !follows[classify(input[i])][classify(input[i+1])] {
			return false
		}
	}
	return !isDigit(input[len(input)-1])
}
