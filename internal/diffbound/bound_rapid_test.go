package diffbound

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// --- Generators ---

func genDiffText() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		lines := rapid.SliceOfN(rapid.StringMatching(`[+\- @]?[a-zé日 ]{0,40}`), 0, 80).Draw(t, "lines")
		text := strings.Join(lines, "\n")
		if rapid.Bool().Draw(t, "trailingNewline") && text != "" {
			text += "\n"
		}
		return text
	})
}

// --- Property Tests ---

func TestRapidBound_SizeLaw(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := genDiffText().Draw(t, "text")
		max := rapid.IntRange(1, 4000).Draw(t, "max")

		r := Bound(text, max)
		if len(text) <= max {
			if r.Truncated || r.Text != text {
				t.Fatalf("text within cap was modified")
			}
			return
		}

		if !r.Truncated {
			t.Fatalf("oversized text not truncated")
		}
		marker := Marker(r.KeptSize, len(text))
		if len(r.Text) > max+len(marker) {
			t.Fatalf("len = %d, exceeds cap %d + marker %d", len(r.Text), max, len(marker))
		}
		if !strings.HasSuffix(r.Text, marker) {
			t.Fatalf("text does not end with the marker")
		}
		kept := r.Text[:r.KeptSize]
		if r.KeptSize > max || !strings.HasPrefix(text, kept) {
			t.Fatalf("kept prefix invalid: %d bytes", r.KeptSize)
		}
		if kept != "" && kept[len(kept)-1] != '\n' {
			t.Fatalf("kept prefix does not end at a line break")
		}
		if strings.Contains(text[r.KeptSize:max], "\n") {
			t.Fatalf("a longer line-aligned prefix fits in the cap")
		}
	})
}
