package prompt

import (
	"strings"

	"dorm-assistant-be/pkg/llm"
	"dorm-assistant-be/pkg/ragcore/contextbuild"
)

// MaxPromptLen caps runaway prompts; history is dropped before context.
const MaxPromptLen = 10000

// ContextualBuilder composes the final prompt from retrieved knowledge,
// conversation history and the user query.
type ContextualBuilder struct {
	context string
	query   string
	history []llm.Message
}

func NewContextualBuilder(context string, query string, history []llm.Message) *ContextualBuilder {
	return &ContextualBuilder{
		context: context,
		query:   query,
		history: history,
	}
}

// Build renders the prompt. When the full rendering would exceed
// MaxPromptLen the history section is omitted first.
func (b *ContextualBuilder) Build() string {
	full := b.render(true)
	if len(full) <= MaxPromptLen {
		return full
	}
	return b.render(false)
}

func (b *ContextualBuilder) render(withHistory bool) string {
	var prompt strings.Builder

	b.writeTask(&prompt)
	b.writeReferenceMaterial(&prompt)
	if withHistory {
		b.writeHistory(&prompt)
	}
	b.writeUserQuery(&prompt)

	return prompt.String()
}

func (b *ContextualBuilder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task>\n")
	prompt.WriteString("You are a helpful dormitory assistant answering residents' questions.\n")
	prompt.WriteString("Base your answer on the reference material when it is relevant; if it does not cover the question, say so honestly.\n")
	prompt.WriteString("Keep answers short, friendly and practical.\n")
	prompt.WriteString("</task>\n\n")
}

func (b *ContextualBuilder) writeReferenceMaterial(prompt *strings.Builder) {
	if b.context == "" || b.context == contextbuild.NoInformationSentinel {
		return
	}
	prompt.WriteString("<reference_material>\n")
	prompt.WriteString(b.context)
	prompt.WriteString("\n</reference_material>\n\n")
}

func (b *ContextualBuilder) writeHistory(prompt *strings.Builder) {
	if len(b.history) == 0 {
		return
	}
	prompt.WriteString("<conversation_so_far>\n")
	for _, msg := range b.history {
		role := "User"
		if msg.Role == "assistant" {
			role = "Assistant"
		}
		prompt.WriteString(role)
		prompt.WriteString(": ")
		prompt.WriteString(msg.Content)
		prompt.WriteString("\n")
	}
	prompt.WriteString("</conversation_so_far>\n\n")
}

func (b *ContextualBuilder) writeUserQuery(prompt *strings.Builder) {
	prompt.WriteString("<user_question>\n")
	prompt.WriteString(b.query)
	prompt.WriteString("\n</user_question>\n\n")
	prompt.WriteString("Now answer the resident's question:")
}

// FallbackAnswer produces the graceful reply used when generation fails.
// With usable context it quotes the retrieved material verbatim; without
// it the reply admits nothing was found.
func FallbackAnswer(context string) string {
	if context == "" || context == contextbuild.NoInformationSentinel {
		return "I could not find anything about that in the dormitory knowledge base, " +
			"and the assistant service is temporarily unavailable. Please try again in a minute."
	}
	return "The assistant service is temporarily unavailable, but here is what the " +
		"dormitory knowledge base says:\n\n" + context
}
