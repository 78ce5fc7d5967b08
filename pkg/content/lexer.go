package content

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// TokenType for content streams
type TokenType int

const (
	TokenOperator TokenType = iota
	TokenOperand
)

// Token is one content stream token. Operand values are float64 for
// numbers, string for names, []byte for strings and inline image data,
// []any for arrays, map[string]any for dictionaries and bool or nil for the
// matching keywords.
type Token struct {
	Type  TokenType
	Value any
}

// Lexer tokenizes PDF content streams
type Lexer struct {
	data       []byte
	pos        int
	inlineData bool
}

// NewLexer creates a lexer over a decoded content stream
func NewLexer(data []byte) *Lexer {
	return &Lexer{data: data}
}

// Next returns the next token, or io.EOF at the end of the stream. On a
// malformed token the lexer still advances, so callers may skip the error
// and continue.
func (l *Lexer) Next() (Token, error) {
	if l.inlineData {
		l.inlineData = false
		return l.readInlineData()
	}

	l.skipWhitespace()
	if l.pos >= len(l.data) {
		return Token{}, io.EOF
	}

	if isOperandStart(l.data[l.pos]) {
		v, err := l.readValue()
		if err != nil {
			return Token{}, err
		}
		return Token{Type: TokenOperand, Value: v}, nil
	}

	op, err := l.readKeyword()
	if err != nil {
		return Token{}, err
	}
	switch op {
	case "true":
		return Token{Type: TokenOperand, Value: true}, nil
	case "false":
		return Token{Type: TokenOperand, Value: false}, nil
	case "null":
		return Token{Type: TokenOperand, Value: nil}, nil
	case "ID":
		l.inlineData = true
	}
	return Token{Type: TokenOperator, Value: op}, nil
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f' || ch == 0
}

func isDelimiter(ch byte) bool {
	switch ch {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isOperandStart(ch byte) bool {
	return ch == '(' || ch == '<' || ch == '[' || ch == '/' ||
		ch == '+' || ch == '-' || ch == '.' || (ch >= '0' && ch <= '9')
}

// skipWhitespace skips whitespace and comments
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.data) {
		ch := l.data[l.pos]
		switch {
		case isWhitespace(ch):
			l.pos++
		case ch == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *Lexer) readValue() (any, error) {
	ch := l.data[l.pos]
	switch {
	case ch == '(':
		return l.readString()
	case ch == '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			return l.readDict()
		}
		return l.readHexString()
	case ch == '[':
		return l.readArray()
	case ch == '/':
		return l.readName(), nil
	case ch == '+' || ch == '-' || ch == '.' || (ch >= '0' && ch <= '9'):
		return l.readNumber(), nil
	}

	kw, err := l.readKeyword()
	if err != nil {
		return nil, err
	}
	switch kw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	}
	return nil, fmt.Errorf("unexpected keyword %q in value at offset %d", kw, l.pos)
}

// readString reads a literal string, resolving escapes
func (l *Lexer) readString() ([]byte, error) {
	l.pos++ // Skip (
	start := l.pos
	depth := 1
	escaped := false

	for l.pos < len(l.data) && depth > 0 {
		ch := l.data[l.pos]
		if escaped {
			escaped = false
		} else {
			switch ch {
			case '\\':
				escaped = true
			case '(':
				depth++
			case ')':
				depth--
			}
		}
		l.pos++
	}

	if depth > 0 {
		return nil, fmt.Errorf("unterminated string at offset %d", start-1)
	}
	return unescape(l.data[start : l.pos-1]), nil
}

// readHexString reads <...>, ignoring whitespace; an odd final digit is
// padded with 0
func (l *Lexer) readHexString() ([]byte, error) {
	l.pos++ // Skip <
	start := l.pos

	end := bytes.IndexByte(l.data[start:], '>')
	if end < 0 {
		l.pos = len(l.data)
		return nil, fmt.Errorf("unterminated hex string at offset %d", start-1)
	}
	l.pos = start + end + 1

	digits := make([]byte, 0, end)
	for _, b := range l.data[start : start+end] {
		if (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F') {
			digits = append(digits, b)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	out := make([]byte, len(digits)/2)
	for i := range out {
		v, _ := strconv.ParseUint(string(digits[2*i:2*i+2]), 16, 8)
		out[i] = byte(v)
	}
	return out, nil
}

func (l *Lexer) readArray() ([]any, error) {
	l.pos++ // Skip [
	array := []any{}

	for {
		l.skipWhitespace()
		if l.pos >= len(l.data) {
			return nil, fmt.Errorf("unterminated array")
		}
		if l.data[l.pos] == ']' {
			l.pos++
			return array, nil
		}
		v, err := l.readValue()
		if err != nil {
			return nil, err
		}
		array = append(array, v)
	}
}

func (l *Lexer) readDict() (map[string]any, error) {
	l.pos += 2 // Skip <<
	dict := map[string]any{}

	for {
		l.skipWhitespace()
		if l.pos >= len(l.data) {
			return nil, fmt.Errorf("unterminated dictionary")
		}
		if l.data[l.pos] == '>' {
			if l.pos+1 < len(l.data) && l.data[l.pos+1] == '>' {
				l.pos += 2
				return dict, nil
			}
			l.pos++
			return nil, fmt.Errorf("unexpected '>' in dictionary at offset %d", l.pos-1)
		}
		if l.data[l.pos] != '/' {
			l.pos++
			return nil, fmt.Errorf("dictionary key is not a name at offset %d", l.pos-1)
		}
		key := l.readName()

		l.skipWhitespace()
		if l.pos >= len(l.data) {
			return nil, fmt.Errorf("unterminated dictionary")
		}
		v, err := l.readValue()
		if err != nil {
			return nil, err
		}
		dict[key] = v
	}
}

// readName reads a name, resolving #xx escapes
func (l *Lexer) readName() string {
	l.pos++ // Skip /
	start := l.pos
	for l.pos < len(l.data) && !isWhitespace(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}

	raw := l.data[start:l.pos]
	if bytes.IndexByte(raw, '#') < 0 {
		return string(raw)
	}
	var name []byte
	for i := 0; i < len(raw); i++ {
		if raw[i] == '#' && i+2 < len(raw) {
			if v, err := strconv.ParseUint(string(raw[i+1:i+3]), 16, 8); err == nil {
				name = append(name, byte(v))
				i += 2
				continue
			}
		}
		name = append(name, raw[i])
	}
	return string(name)
}

func (l *Lexer) readNumber() float64 {
	start := l.pos
	hasDecimal := false

	for l.pos < len(l.data) {
		ch := l.data[l.pos]
		if ch == '.' {
			if hasDecimal {
				break
			}
			hasDecimal = true
		} else if ch == '+' || ch == '-' {
			if l.pos != start {
				break
			}
		} else if ch < '0' || ch > '9' {
			break
		}
		l.pos++
	}

	v, _ := strconv.ParseFloat(string(l.data[start:l.pos]), 64)
	return v
}

// readKeyword reads an operator or keyword up to the next whitespace or
// delimiter
func (l *Lexer) readKeyword() (string, error) {
	start := l.pos
	for l.pos < len(l.data) && !isWhitespace(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		l.pos++
		return "", fmt.Errorf("unexpected %q at offset %d", l.data[start], start)
	}
	return string(l.data[start:l.pos]), nil
}

// readInlineData returns the raw bytes between ID and EI
func (l *Lexer) readInlineData() (Token, error) {
	if l.pos < len(l.data) && isWhitespace(l.data[l.pos]) {
		l.pos++
	}
	start := l.pos

	for i := start; i+1 < len(l.data); i++ {
		if l.data[i] != 'E' || l.data[i+1] != 'I' {
			continue
		}
		if i > start && !isWhitespace(l.data[i-1]) {
			continue
		}
		if i+2 < len(l.data) && !isWhitespace(l.data[i+2]) && !isDelimiter(l.data[i+2]) {
			continue
		}

		end := i
		if end > start && isWhitespace(l.data[end-1]) {
			end--
		}
		l.pos = i
		return Token{Type: TokenOperand, Value: l.data[start:end]}, nil
	}

	l.pos = len(l.data)
	return Token{}, fmt.Errorf("inline image data without EI at offset %d", start)
}

// unescape resolves the escape sequences of a literal string
func unescape(text []byte) []byte {
	result := make([]byte, 0, len(text))

	for i := 0; i < len(text); i++ {
		if text[i] != '\\' {
			result = append(result, text[i])
			continue
		}
		i++
		if i >= len(text) {
			break
		}

		switch text[i] {
		case 'n':
			result = append(result, '\n')
		case 'r':
			result = append(result, '\r')
		case 't':
			result = append(result, '\t')
		case 'b':
			result = append(result, '\b')
		case 'f':
			result = append(result, '\f')
		case '\r':
			// Line continuation
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
		case '\n':
			// Line continuation
		default:
			if text[i] >= '0' && text[i] <= '7' {
				j := i
				for j < len(text) && j < i+3 && text[j] >= '0' && text[j] <= '7' {
					j++
				}
				v, _ := strconv.ParseUint(string(text[i:j]), 8, 16)
				result = append(result, byte(v))
				i = j - 1
			} else {
				result = append(result, text[i])
			}
		}
	}
	return result
}
