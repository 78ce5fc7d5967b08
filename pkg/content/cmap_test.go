package content

import (
	"testing"
)

func TestNewToUnicodeCMap(t *testing.T) {
	cmap := NewToUnicodeCMap()
	if cmap == nil {
		t.Fatal("NewToUnicodeCMap() returned nil")
	}
	if cmap.codes == nil {
		t.Error("codes map not initialized")
	}
	if count := cmap.Len(); count != 0 {
		t.Errorf("Empty CMap has %d mappings, expected 0", count)
	}
}

func TestParseBeginBFChar(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[uint32]string
	}{
		{
			name: "Single mapping",
			input: `
				beginbfchar
				<0001> <0041>
				endbfchar
			`,
			expected: map[uint32]string{
				0x0001: "A",
			},
		},
		{
			name: "Counted section",
			input: `
				3 beginbfchar
				<0001> <0041>
				<0002> <0042>
				<0003> <0043>
				endbfchar
			`,
			expected: map[uint32]string{
				0x0001: "A",
				0x0002: "B",
				0x0003: "C",
			},
		},
		{
			name: "Korean characters",
			input: `
				beginbfchar
				<0001> <AC00>
				<0002> <AC01>
				endbfchar
			`,
			expected: map[uint32]string{
				0x0001: "가",
				0x0002: "각",
			},
		},
		{
			name: "Byte order mark",
			input: `
				beginbfchar
				<0001> <FEFF0041>
				<0002> <FEFF0042>
				endbfchar
			`,
			expected: map[uint32]string{
				0x0001: "A",
				0x0002: "B",
			},
		},
		{
			name: "Ligature",
			input: `
				beginbfchar
				<0005> <00660069>
				endbfchar
			`,
			expected: map[uint32]string{
				0x0005: "fi",
			},
		},
		{
			name: "Single byte codes",
			input: `
				1 begincodespacerange <00> <FF> endcodespacerange
				beginbfchar
				<41> <0061>
				endbfchar
			`,
			expected: map[uint32]string{
				0x41: "a",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmap, err := ParseToUnicodeCMap([]byte(tt.input))
			if err != nil {
				t.Fatalf("ParseToUnicodeCMap() error = %v", err)
			}

			for code, expected := range tt.expected {
				text, ok := cmap.Lookup(code)
				if !ok {
					t.Errorf("code %04X not found in mapping", code)
					continue
				}
				if text != expected {
					t.Errorf("code %04X: expected %q, got %q", code, expected, text)
				}
			}
		})
	}
}

func TestParseBeginBFRange(t *testing.T) {
	tests := []struct {
		name  string
		input string
		codes map[uint32]string
	}{
		{
			name: "Contiguous range",
			input: `
				beginbfrange
				<0001> <0005> <0041>
				endbfrange
			`,
			codes: map[uint32]string{
				0x0001: "A",
				0x0002: "B",
				0x0003: "C",
				0x0004: "D",
				0x0005: "E",
			},
		},
		{
			name: "Array mapping",
			input: `
				beginbfrange
				<0001> <0003> [<0041> <0043> <0045>]
				endbfrange
			`,
			codes: map[uint32]string{
				0x0001: "A",
				0x0002: "C",
				0x0003: "E",
			},
		},
		{
			name: "Multiple ranges",
			input: `
				beginbfrange
				<0001> <0003> <0041>
				<0010> <0012> <0061>
				endbfrange
			`,
			codes: map[uint32]string{
				0x0001: "A",
				0x0002: "B",
				0x0003: "C",
				0x0010: "a",
				0x0011: "b",
				0x0012: "c",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmap, err := ParseToUnicodeCMap([]byte(tt.input))
			if err != nil {
				t.Fatalf("ParseToUnicodeCMap() error = %v", err)
			}

			for code, expected := range tt.codes {
				text, ok := cmap.Lookup(code)
				if !ok {
					t.Errorf("code %04X not found in mapping", code)
					continue
				}
				if text != expected {
					t.Errorf("code %04X: expected %q, got %q", code, expected, text)
				}
			}
		})
	}

	cmap, err := ParseToUnicodeCMap([]byte("beginbfrange <0001> <0003> <0041> endbfrange"))
	if err != nil {
		t.Fatalf("ParseToUnicodeCMap() error = %v", err)
	}
	if _, ok := cmap.Lookup(0x0004); ok {
		t.Error("code 0004 outside the range should not map")
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := ParseToUnicodeCMap([]byte("beginbfchar <0001> endbfchar")); err == nil {
		t.Error("expected error for unpaired beginbfchar entry")
	}
	if _, err := ParseToUnicodeCMap([]byte("beginbfrange <0001> <0002> endbfrange")); err == nil {
		t.Error("expected error for incomplete beginbfrange entry")
	}
}

func TestDecode(t *testing.T) {
	cmapData := `
		beginbfchar
		<0048> <0048>
		<0065> <0065>
		<006C> <006C>
		<006F> <006F>
		endbfchar
		beginbfrange
		<0020> <007E> <0020>
		endbfrange
	`

	cmap, err := ParseToUnicodeCMap([]byte(cmapData))
	if err != nil {
		t.Fatalf("Failed to parse CMap: %v", err)
	}
	if cmap.CodeLen() != 2 {
		t.Errorf("CodeLen() = %d, want 2", cmap.CodeLen())
	}

	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "ASCII text",
			input:    []byte{0x00, 0x48, 0x00, 0x65, 0x00, 0x6C, 0x00, 0x6C, 0x00, 0x6F},
			expected: "Hello",
		},
		{
			name:     "Single byte fallback",
			input:    []byte{0x48, 0x65, 0x6C, 0x6C, 0x6F},
			expected: "Hello",
		},
		{
			name:     "Mixed mapped and unmapped",
			input:    []byte{0x00, 0x48, 0xFF, 0xFF, 0x00, 0x65},
			expected: "Hÿÿe",
		},
		{
			name:     "Empty",
			input:    nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cmap.Decode(tt.input)
			if result != tt.expected {
				t.Errorf("Decode() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestLen(t *testing.T) {
	cmapData := `
		beginbfchar
		<0001> <0041>
		<0002> <0042>
		<0003> <0043>
		endbfchar
		beginbfrange
		<0010> <0015> <0061>
		<0020> <0021> [<0041> <0042>]
		endbfrange
	`

	cmap, err := ParseToUnicodeCMap([]byte(cmapData))
	if err != nil {
		t.Fatalf("Failed to parse CMap: %v", err)
	}

	// 3 direct mappings + 6 range mappings + 2 array mappings
	expectedCount := 3 + 6 + 2
	if count := cmap.Len(); count != expectedCount {
		t.Errorf("CMap has %d mappings, expected %d", count, expectedCount)
	}
}

func TestComplexRealWorldCMap(t *testing.T) {
	cmapData := `
		/CIDInit /ProcSet findresource begin
		12 dict begin
		begincmap
		/CIDSystemInfo
		<< /Registry (Adobe)
		/Ordering (UCS)
		/Supplement 0
		>> def
		/CMapName /Adobe-Identity-UCS def
		/CMapType 2 def
		1 begincodespacerange
		<0000> <FFFF>
		endcodespacerange
		3 beginbfchar
		<0003> <0020>
		<0048> <AC00>
		<0049> <AC01>
		endbfchar
		2 beginbfrange
		<004A> <004C> <AC02>
		<0050> <0052> [<AC10> <AC11> <AC12>]
		endbfrange
		endcmap
		CMapName currentdict /CMap defineresource pop
		end
		end
	`

	cmap, err := ParseToUnicodeCMap([]byte(cmapData))
	if err != nil {
		t.Fatalf("Failed to parse complex CMap: %v", err)
	}

	tests := map[uint32]string{
		0x0003: " ",
		0x0048: "가",
		0x0049: "각",
		0x004A: "갂",
		0x004B: "갃",
		0x004C: "간",
		0x0050: "감",
		0x0051: "갑",
		0x0052: "값",
	}

	for code, expected := range tests {
		text, ok := cmap.Lookup(code)
		if !ok {
			t.Errorf("code %04X not found", code)
			continue
		}
		if text != expected {
			t.Errorf("code %04X: expected %q, got %q", code, expected, text)
		}
	}

	if got := cmap.Decode([]byte{0x00, 0x48, 0x00, 0x03, 0x00, 0x50}); got != "가 감" {
		t.Errorf("Decode() = %q, want %q", got, "가 감")
	}
}

func TestWinAnsi(t *testing.T) {
	tests := []struct {
		input    []byte
		expected string
	}{
		{[]byte("plain"), "plain"},
		{[]byte{'c', 'a', 'f', 0xE9}, "café"},
		{[]byte{0x93, 'q', 0x94}, "“q”"},
	}
	for _, tt := range tests {
		if got := WinAnsi.Decode(tt.input); got != tt.expected {
			t.Errorf("WinAnsi.Decode(%v) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func BenchmarkParse(b *testing.B) {
	cmapData := []byte(`
		beginbfchar
		<0001> <0041>
		<0002> <0042>
		<0003> <0043>
		endbfchar
		beginbfrange
		<0010> <00FF> <0061>
		endbfrange
	`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmap := NewToUnicodeCMap()
		_ = cmap.Parse(cmapData)
	}
}

func BenchmarkDecode(b *testing.B) {
	cmap := NewToUnicodeCMap()
	_ = cmap.Parse([]byte(`
		beginbfrange
		<0020> <007E> <0020>
		endbfrange
	`))

	data := []byte{0x00, 0x48, 0x00, 0x65, 0x00, 0x6C, 0x00, 0x6C, 0x00, 0x6F}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cmap.Decode(data)
	}
}
