package pdf

import (
	"strings"
)

// scanContentText walks a decoded page content stream and collects the
// operands of text-show operators (Tj, TJ, ' and "). Positioning operators
// that start a new line (Td, TD, T*) and ET blocks emit newlines so the
// recovered text keeps a rough line structure. Font decoding is not
// attempted: strings are taken as written, which is correct for the common
// WinAnsi/ASCII case and degrades to garbage only for exotic CID fonts.
func scanContentText(stream []byte) string {
	var out strings.Builder
	var pending []string

	flush := func() {
		for _, s := range pending {
			out.WriteString(s)
		}
		pending = pending[:0]
	}

	newline := func() {
		if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
			out.WriteByte('\n')
		}
	}

	i := 0
	n := len(stream)
	for i < n {
		c := stream[i]

		switch {
		case c == '(':
			s, next := readLiteralString(stream, i)
			pending = append(pending, s)
			i = next

		case c == '<' && i+1 < n && stream[i+1] != '<':
			s, next := readHexString(stream, i)
			pending = append(pending, s)
			i = next

		case c == '%':
			// Comment runs to end of line
			for i < n && stream[i] != '\n' && stream[i] != '\r' {
				i++
			}

		case isOperatorChar(c):
			start := i
			for i < n && isOperatorChar(stream[i]) {
				i++
			}
			switch string(stream[start:i]) {
			case "Tj", "TJ":
				flush()
			case "'", "\"":
				newline()
				flush()
			case "Td", "TD", "T*", "ET":
				pending = pending[:0]
				newline()
			default:
				// Operands belonged to some other operator
				pending = pending[:0]
			}

		default:
			i++
		}
	}

	return strings.TrimRight(out.String(), "\n")
}

// readLiteralString reads a PDF literal string starting at stream[i] == '('.
// Returns the decoded string and the index just past the closing paren.
func readLiteralString(stream []byte, i int) (string, int) {
	var sb strings.Builder
	depth := 0
	n := len(stream)

	for ; i < n; i++ {
		c := stream[i]
		switch c {
		case '(':
			depth++
			if depth > 1 {
				sb.WriteByte(c)
			}
		case ')':
			depth--
			if depth == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(c)
		case '\\':
			if i+1 >= n {
				return sb.String(), n
			}
			i++
			switch stream[i] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b', 'f':
				// Rare control escapes carry no text value
			case '(', ')', '\\':
				sb.WriteByte(stream[i])
			case '0', '1', '2', '3', '4', '5', '6', '7':
				val := int(stream[i] - '0')
				for k := 0; k < 2 && i+1 < n && stream[i+1] >= '0' && stream[i+1] <= '7'; k++ {
					i++
					val = val*8 + int(stream[i]-'0')
				}
				sb.WriteByte(byte(val))
			}
		default:
			sb.WriteByte(c)
		}
	}

	return sb.String(), n
}

// readHexString reads a PDF hex string starting at stream[i] == '<'.
func readHexString(stream []byte, i int) (string, int) {
	var sb strings.Builder
	n := len(stream)
	i++ // skip '<'

	var hi byte
	haveHi := false
	for ; i < n; i++ {
		c := stream[i]
		if c == '>' {
			i++
			break
		}
		v, ok := hexValue(c)
		if !ok {
			continue
		}
		if !haveHi {
			hi = v
			haveHi = true
		} else {
			sb.WriteByte(hi<<4 | v)
			haveHi = false
		}
	}
	// Odd digit count: last digit is the high nibble of a trailing byte
	if haveHi {
		sb.WriteByte(hi << 4)
	}

	return sb.String(), i
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func isOperatorChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '*' || c == '\'' || c == '"'
}
