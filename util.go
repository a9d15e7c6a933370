package main

// maxNickLength is the longest nickname the server will accept on a NICK
// command.
const maxNickLength = 9

// isValidNick reports whether n matches the nickname grammar: it must be
// 1-9 bytes, start with an ASCII letter, and its remaining bytes must each
// be a letter, digit, or one of the special characters IRC has
// traditionally permitted in nicknames.
func isValidNick(n string) bool {
	if len(n) == 0 || len(n) > maxNickLength {
		return false
	}

	if !isNickLetter(n[0]) {
		return false
	}

	for i := 1; i < len(n); i++ {
		c := n[i]
		if isNickLetter(c) || isDigit(c) || isNickSpecial(c) {
			continue
		}
		return false
	}

	return true
}

func isNickLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNickSpecial(c byte) bool {
	switch c {
	case '-', '[', ']', '\\', '`', '^', '{', '}':
		return true
	default:
		return false
	}
}
