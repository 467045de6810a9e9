package contextbuild

import (
	"strings"
	"testing"
	"unicode/utf8"

	"dorm-assistant-be/internal/entity"
)

func scored(category, text string, score float64) ScoredItem {
	return ScoredItem{
		Item:  &entity.KnowledgeItem{Category: category, Text: text},
		Score: score,
	}
}

func TestAssembleEmptyReturnsSentinel(t *testing.T) {
	a := NewAssembler(2000)
	if got := a.Assemble(nil); got != NoInformationSentinel {
		t.Errorf("Assemble(nil) = %q, want %q", got, NoInformationSentinel)
	}
	if got := a.Assemble([]ScoredItem{}); got != NoInformationSentinel {
		t.Errorf("Assemble(empty) = %q, want %q", got, NoInformationSentinel)
	}
}

func TestAssembleBlockFormat(t *testing.T) {
	a := NewAssembler(2000)
	got := a.Assemble([]ScoredItem{
		scored("facilities", "Laundry is in the basement.", 0.5),
		scored("rules", "Quiet hours start at 23:00.", 0.25),
	})

	want := "[facilities | Relevance 0.50]\nLaundry is in the basement.\n\n" +
		"[rules | Relevance 0.25]\nQuiet hours start at 23:00."
	if got != want {
		t.Errorf("Assemble() = %q, want %q", got, want)
	}
}

func TestAssembleDropsLowestRankedBlocks(t *testing.T) {
	long := strings.Repeat("a", 900)
	a := NewAssembler(2000)
	got := a.Assemble([]ScoredItem{
		scored("general", long, 1.0),
		scored("general", long, 0.9),
		scored("general", long, 0.8),
	})

	if strings.Count(got, "[general") != 2 {
		t.Errorf("expected the third block dropped, got %d blocks", strings.Count(got, "[general"))
	}
	if !strings.Contains(got, "Relevance 1.00") || !strings.Contains(got, "Relevance 0.90") {
		t.Errorf("highest-ranked blocks missing from %q...", got[:80])
	}
	if strings.Contains(got, "Relevance 0.80") {
		t.Error("lowest-ranked block should have been dropped")
	}
}

func TestAssembleTruncatesOversizedTopBlock(t *testing.T) {
	// Cyrillic text makes byte-length truncation corrupt a rune boundary.
	long := strings.Repeat("прачечная ", 300)
	a := NewAssembler(100)
	got := a.Assemble([]ScoredItem{scored("facilities", long, 1.0)})

	if utf8.RuneCountInString(got) > 100 {
		t.Errorf("assembled context is %d runes, limit is 100", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, TruncationMarker) {
		t.Errorf("truncated block must end with marker, got %q", got)
	}
	if !utf8.ValidString(got) {
		t.Error("truncation split a rune")
	}
}

func TestAssembleNeverExceedsLimitAndNeverSentinel(t *testing.T) {
	a := NewAssembler(500)
	items := []ScoredItem{
		scored("payments", strings.Repeat("rent ", 200), 0.7),
		scored("rules", strings.Repeat("guests ", 200), 0.6),
	}
	got := a.Assemble(items)
	if utf8.RuneCountInString(got) > 500 {
		t.Errorf("assembled context is %d runes, limit is 500", utf8.RuneCountInString(got))
	}
	if got == NoInformationSentinel {
		t.Error("non-empty results must never produce the sentinel")
	}
}
