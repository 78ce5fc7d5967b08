package render

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidName is returned when a type or attribute name cannot be used
// as an element or attribute name
var ErrInvalidName = errors.New("invalid element name")

// checkNames verifies every element and attribute name the markup
// renderers derive from types, before any output is written
func checkNames(types []typeObjects) error {
	for _, t := range types {
		for _, name := range []string{TagName(t.name), ItemName(t.name)} {
			if !validName(name) {
				return fmt.Errorf("%w: %q from type %s", ErrInvalidName, name, t.name)
			}
		}
		seen := make(map[string]bool)
		for _, o := range t.objects {
			for _, key := range o.Keys() {
				if key == contentKey || seen[key] {
					continue
				}
				seen[key] = true
				if name := TagName(key); !validName(name) {
					return fmt.Errorf("%w: %q from attribute %s of type %s", ErrInvalidName, name, key, t.name)
				}
			}
		}
	}
	return nil
}

// validName reports whether s is an XML 1.0 Name without a colon
func validName(s string) bool {
	if s == "" || !utf8.ValidString(s) {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !nameStart(r) {
				return false
			}
		} else if !nameStart(r) && !nameChar(r) {
			return false
		}
	}
	return true
}

func nameStart(r rune) bool {
	switch {
	case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		return true
	case r >= 0xC0 && r <= 0xD6, r >= 0xD8 && r <= 0xF6, r >= 0xF8 && r <= 0x2FF,
		r >= 0x370 && r <= 0x37D, r >= 0x37F && r <= 0x1FFF, r >= 0x200C && r <= 0x200D,
		r >= 0x2070 && r <= 0x218F, r >= 0x2C00 && r <= 0x2FEF, r >= 0x3001 && r <= 0xD7FF,
		r >= 0xF900 && r <= 0xFDCF, r >= 0xFDF0 && r <= 0xFFFD, r >= 0x10000 && r <= 0xEFFFF:
		return true
	}
	return false
}

func nameChar(r rune) bool {
	switch {
	case r == '-', r == '.', r >= '0' && r <= '9', r == 0xB7:
		return true
	case r >= 0x300 && r <= 0x36F, r >= 0x203F && r <= 0x2040:
		return true
	}
	return false
}
