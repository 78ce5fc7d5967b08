// Package references splits the running text of reference-bearing sections
// into numbered citation entries.
package references

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// numbered matches a number with at most one non-digit bound on each side
var numbered = regexp.MustCompile(`(\D?)(\d+)(\D?)`)

// Config controls segmentation
type Config struct {
	// MinLetterRatio and MaxLetterRatio bound, inclusively, the fraction of
	// letters a section needs to be searched for references
	MinLetterRatio float64
	MaxLetterRatio float64

	// CloseTrailing emits the text after the last delimiter as a final
	// entry. When false that text is dropped.
	CloseTrailing bool
}

// DefaultConfig returns the default segmentation settings
func DefaultConfig() Config {
	return Config{
		MinLetterRatio: 0.2,
		MaxLetterRatio: 0.5,
		CloseTrailing:  true,
	}
}

// Eligible reports whether a section with the given letter ratio is
// searched for references
func (c Config) Eligible(ratio float64) bool {
	return ratio >= c.MinLetterRatio && ratio <= c.MaxLetterRatio
}

// Entry is one citation
type Entry struct {
	Content string
	Order   int
}

// LetterRatio returns the fraction of runes in s that are letters
func LetterRatio(s string) float64 {
	var letters, total int
	for _, r := range s {
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(letters) / float64(total)
}

// tally counts bound characters, remembering first-seen order for ties
type tally struct {
	counts map[string]int
	order  []string
}

func (t *tally) add(s string) {
	if s == "" {
		return
	}
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	if t.counts[s] == 0 {
		t.order = append(t.order, s)
	}
	t.counts[s]++
}

func (t *tally) top() string {
	best, bestN := "", 0
	for _, s := range t.order {
		if t.counts[s] > bestN {
			best, bestN = s, t.counts[s]
		}
	}
	return best
}

// Delimiters infers the characters that bracket the reference numbers in
// text, e.g. "[" and "]" for "[1] ... [2] ...". Only numbers continuing the
// sequence started by the first number are counted. ok is false when text
// holds no number at all.
func Delimiters(text string) (before, after string, ok bool) {
	var lead, trail tally
	last := 0
	for _, m := range numbered.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if ok && n != last+1 {
			continue
		}
		ok = true
		last = n
		lead.add(m[1])
		trail.add(m[3])
	}
	return lead.top(), trail.top(), ok
}

// Split partitions text into citation entries. Delimiters are inferred
// with Delimiters; a delimiter whose number does not continue the sequence
// is kept as entry text. The text before the first delimiter is dropped.
func (c Config) Split(text string) []Entry {
	before, after, ok := Delimiters(text)
	if !ok {
		return nil
	}
	re := regexp.MustCompile(regexp.QuoteMeta(before) + `(\d+)` + regexp.QuoteMeta(after))

	var (
		entries []Entry
		buf     strings.Builder
		started bool
		last    int
		prev    int
	)
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		preceding, delim := text[prev:loc[0]], text[loc[0]:loc[1]]
		prev = loc[1]

		n, err := strconv.Atoi(text[loc[2]:loc[3]])
		switch {
		case !started:
			if err != nil {
				continue
			}
			started, last = true, n
		case err == nil && n == last+1:
			buf.WriteString(preceding)
			entries = append(entries, Entry{Content: strings.TrimSpace(buf.String()), Order: last})
			buf.Reset()
			last = n
		default:
			buf.WriteString(preceding)
			buf.WriteString(delim)
		}
	}

	if c.CloseTrailing && started {
		buf.WriteString(text[prev:])
		if content := strings.TrimSpace(buf.String()); content != "" {
			entries = append(entries, Entry{Content: content, Order: last})
		}
	}
	return entries
}
