package contextbuild

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"dorm-assistant-be/internal/entity"
)

// NoInformationSentinel is returned for an empty result set. Callers
// compare against it to detect that no knowledge matched.
const NoInformationSentinel = "no information found"

// TruncationMarker terminates a block whose text had to be cut to fit.
const TruncationMarker = " ... [truncated]"

const DefaultMaxContextLen = 2000

// ScoredItem pairs a knowledge item with its retrieval score, already
// ordered best-first by the retriever.
type ScoredItem struct {
	Item  *entity.KnowledgeItem
	Score float64
}

// Assembler renders ranked knowledge items into a single bounded string
// for prompt injection.
type Assembler struct {
	maxLen int
}

func NewAssembler(maxLen int) *Assembler {
	if maxLen <= 0 {
		maxLen = DefaultMaxContextLen
	}
	return &Assembler{maxLen: maxLen}
}

// Assemble concatenates one labeled block per result, separated by blank
// lines. When the natural concatenation exceeds the limit, whole blocks
// are dropped lowest-ranked first; mid-block truncation only happens when
// the top-ranked block alone does not fit.
func (a *Assembler) Assemble(results []ScoredItem) string {
	if len(results) == 0 {
		return NoInformationSentinel
	}

	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("[%s | Relevance %.2f]\n%s", r.Item.Category, r.Score, r.Item.Text)
	}

	for len(blocks) > 1 {
		joined := strings.Join(blocks, "\n\n")
		if utf8.RuneCountInString(joined) <= a.maxLen {
			return joined
		}
		blocks = blocks[:len(blocks)-1]
	}

	top := blocks[0]
	if utf8.RuneCountInString(top) <= a.maxLen {
		return top
	}
	cut := a.maxLen - utf8.RuneCountInString(TruncationMarker)
	if cut < 0 {
		cut = 0
	}
	return string([]rune(top)[:cut]) + TruncationMarker
}
