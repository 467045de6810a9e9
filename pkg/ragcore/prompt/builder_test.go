package prompt

import (
	"strings"
	"testing"

	"dorm-assistant-be/pkg/llm"
	"dorm-assistant-be/pkg/ragcore/contextbuild"
)

func TestBuildIncludesAllSections(t *testing.T) {
	history := []llm.Message{
		{Role: "user", Content: "where is the laundry?"},
		{Role: "assistant", Content: "In the basement of building 2."},
	}
	got := NewContextualBuilder("[facilities | Relevance 1.00]\nLaundry hours are 8-22.", "what are its hours?", history).Build()

	for _, section := range []string{"<task>", "<reference_material>", "<conversation_so_far>", "<user_question>"} {
		if !strings.Contains(got, section) {
			t.Errorf("prompt is missing %s", section)
		}
	}
	if !strings.Contains(got, "User: where is the laundry?") {
		t.Errorf("history turn not rendered:\n%s", got)
	}
	if !strings.Contains(got, "Assistant: In the basement of building 2.") {
		t.Errorf("assistant turn not rendered:\n%s", got)
	}
}

func TestBuildOmitsSentinelContext(t *testing.T) {
	got := NewContextualBuilder(contextbuild.NoInformationSentinel, "is there a gym?", nil).Build()
	if strings.Contains(got, "<reference_material>") {
		t.Errorf("sentinel context must not be injected into the prompt:\n%s", got)
	}
	if strings.Contains(got, contextbuild.NoInformationSentinel) {
		t.Errorf("sentinel text leaked into the prompt")
	}
}

func TestBuildDropsHistoryWhenOversized(t *testing.T) {
	history := []llm.Message{{Role: "user", Content: strings.Repeat("a", MaxPromptLen)}}
	got := NewContextualBuilder("some context", "short question", history).Build()

	if strings.Contains(got, "<conversation_so_far>") {
		t.Errorf("oversized prompt kept its history section")
	}
	if !strings.Contains(got, "<reference_material>") {
		t.Errorf("context must survive the history drop")
	}
}

func TestFallbackAnswer(t *testing.T) {
	withContext := FallbackAnswer("[rules | Relevance 0.50]\nQuiet hours start at 23:00.")
	if !strings.Contains(withContext, "Quiet hours start at 23:00.") {
		t.Errorf("fallback with context must quote the retrieved material, got %q", withContext)
	}

	for _, empty := range []string{"", contextbuild.NoInformationSentinel} {
		got := FallbackAnswer(empty)
		if got == "" {
			t.Fatalf("FallbackAnswer(%q) returned empty string", empty)
		}
		if strings.Contains(got, contextbuild.NoInformationSentinel) {
			t.Errorf("fallback leaked the sentinel: %q", got)
		}
	}
}
