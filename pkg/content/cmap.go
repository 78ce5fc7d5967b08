package content

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Decoder turns the raw bytes of a shown string into text
type Decoder interface {
	Decode(raw []byte) string
}

// DecoderFunc adapts a function to Decoder
type DecoderFunc func(raw []byte) string

// Decode calls f
func (f DecoderFunc) Decode(raw []byte) string {
	return f(raw)
}

// WinAnsi decodes single-byte strings as Windows-1252, the fallback for
// fonts without a ToUnicode map
var WinAnsi Decoder = DecoderFunc(func(raw []byte) string {
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
})

// ToUnicodeCMap maps character codes to Unicode text
type ToUnicodeCMap struct {
	// Direct character mappings (from beginbfchar sections)
	codes map[uint32]string

	// Range mappings (from beginbfrange sections)
	ranges []cmapRange

	// codeLen is the code width in bytes, from the codespace ranges or the
	// mapped codes
	codeLen int
}

// cmapRange is one beginbfrange entry
type cmapRange struct {
	start, end uint32
	// dst is the text of start; following codes increment its last rune
	dst string
	// array holds one text per code when the range maps to an array
	array []string
}

// NewToUnicodeCMap creates an empty map
func NewToUnicodeCMap() *ToUnicodeCMap {
	return &ToUnicodeCMap{codes: make(map[uint32]string)}
}

// ParseToUnicodeCMap parses a ToUnicode CMap stream
func ParseToUnicodeCMap(data []byte) (*ToUnicodeCMap, error) {
	cmap := NewToUnicodeCMap()
	if err := cmap.Parse(data); err != nil {
		return nil, err
	}
	return cmap, nil
}

// Parse reads the codespace, bfchar and bfrange sections of a CMap stream.
// The CMap syntax is PostScript, so it is tokenized with the content lexer.
func (cmap *ToUnicodeCMap) Parse(data []byte) error {
	lexer := NewLexer(data)
	var operands []any

	for {
		tok, err := lexer.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// CMaps carry PostScript procedures the lexer does not model
			operands = operands[:0]
			continue
		}

		if tok.Type == TokenOperand {
			operands = append(operands, tok.Value)
			continue
		}

		switch tok.Value.(string) {
		case "endcodespacerange":
			cmap.parseCodespace(operands)
		case "endbfchar":
			if err := cmap.parseBFChar(operands); err != nil {
				return fmt.Errorf("failed to parse beginbfchar: %w", err)
			}
		case "endbfrange":
			if err := cmap.parseBFRange(operands); err != nil {
				return fmt.Errorf("failed to parse beginbfrange: %w", err)
			}
		}
		operands = operands[:0]
	}

	if cmap.codeLen == 0 {
		cmap.codeLen = 2
	}
	return nil
}

func (cmap *ToUnicodeCMap) noteCodeLen(code []byte) {
	if len(code) > cmap.codeLen && len(code) <= 4 {
		cmap.codeLen = len(code)
	}
}

func (cmap *ToUnicodeCMap) parseCodespace(operands []any) {
	for _, op := range operands {
		if b, ok := op.([]byte); ok {
			cmap.noteCodeLen(b)
		}
	}
}

// parseBFChar reads <src> <dst> pairs
func (cmap *ToUnicodeCMap) parseBFChar(operands []any) error {
	if len(operands)%2 != 0 {
		return fmt.Errorf("odd number of operands: %d", len(operands))
	}
	for i := 0; i < len(operands); i += 2 {
		src, ok1 := operands[i].([]byte)
		dst, ok2 := operands[i+1].([]byte)
		if !ok1 || !ok2 {
			continue
		}
		cmap.noteCodeLen(src)
		cmap.codes[codeOf(src)] = utf16Text(dst)
	}
	return nil
}

// parseBFRange reads <start> <end> <dst> or <start> <end> [<dst>...] triples
func (cmap *ToUnicodeCMap) parseBFRange(operands []any) error {
	if len(operands)%3 != 0 {
		return fmt.Errorf("operand count %d is not a multiple of 3", len(operands))
	}
	for i := 0; i < len(operands); i += 3 {
		lo, ok1 := operands[i].([]byte)
		hi, ok2 := operands[i+1].([]byte)
		if !ok1 || !ok2 {
			continue
		}
		cmap.noteCodeLen(lo)
		r := cmapRange{start: codeOf(lo), end: codeOf(hi)}

		switch dst := operands[i+2].(type) {
		case []byte:
			r.dst = utf16Text(dst)
		case []any:
			for _, item := range dst {
				if b, ok := item.([]byte); ok {
					r.array = append(r.array, utf16Text(b))
				} else {
					r.array = append(r.array, "")
				}
			}
		default:
			continue
		}
		cmap.ranges = append(cmap.ranges, r)
	}
	return nil
}

func codeOf(b []byte) uint32 {
	var code uint32
	for _, c := range b {
		code = code<<8 | uint32(c)
	}
	return code
}

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)

// utf16Text decodes a bfchar/bfrange destination: UTF-16BE, or a single
// byte taken as Latin-1
func utf16Text(b []byte) string {
	if len(b) == 1 {
		return string(rune(b[0]))
	}
	out, err := utf16BE.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(out)
}

// Lookup maps one character code to its text
func (cmap *ToUnicodeCMap) Lookup(code uint32) (string, bool) {
	if s, ok := cmap.codes[code]; ok {
		return s, true
	}

	for _, r := range cmap.ranges {
		if code < r.start || code > r.end {
			continue
		}
		offset := code - r.start
		if r.array != nil {
			if int(offset) < len(r.array) {
				return r.array[offset], true
			}
			return "", false
		}
		runes := []rune(r.dst)
		if len(runes) == 0 {
			return "", false
		}
		runes[len(runes)-1] += rune(offset)
		return string(runes), true
	}
	return "", false
}

// Decode maps raw string bytes to text, codeLen bytes per code. Codes
// without a mapping fall back to their single bytes.
func (cmap *ToUnicodeCMap) Decode(raw []byte) string {
	n := cmap.codeLen
	if n == 0 {
		n = 2
	}

	var result strings.Builder
	for i := 0; i < len(raw); i += n {
		end := i + n
		if end > len(raw) {
			end = len(raw)
		}
		if s, ok := cmap.Lookup(codeOf(raw[i:end])); ok {
			result.WriteString(s)
			continue
		}
		for _, b := range raw[i:end] {
			if s, ok := cmap.Lookup(uint32(b)); ok {
				result.WriteString(s)
			} else if b != 0 {
				result.WriteRune(rune(b))
			}
		}
	}
	return result.String()
}

// Len returns the total number of mapped codes
func (cmap *ToUnicodeCMap) Len() int {
	count := len(cmap.codes)
	for _, r := range cmap.ranges {
		if r.array != nil {
			count += len(r.array)
		} else {
			count += int(r.end-r.start) + 1
		}
	}
	return count
}

// CodeLen returns the code width in bytes
func (cmap *ToUnicodeCMap) CodeLen() int {
	return cmap.codeLen
}
