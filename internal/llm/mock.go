package llm

import (
	"context"
	"fmt"
	"strings"
)

// Mock returns a deterministic recipe built from the user turn. It is
// selected with LLM_PROVIDER=mock for local development.
type Mock struct{}

func NewMock() *Mock { return &Mock{} }

func (m *Mock) Provider() string { return "mock" }
func (m *Mock) Model() string    { return "mock-chef" }

func (m *Mock) Complete(ctx context.Context, prompt Prompt) (*Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ingredients := prompt.User
	if i := strings.Index(ingredients, ":"); i >= 0 {
		ingredients = ingredients[i+1:]
	}
	if i := strings.Index(ingredients, "\n"); i >= 0 {
		ingredients = ingredients[:i]
	}
	ingredients = strings.TrimSpace(ingredients)

	var sb strings.Builder
	sb.WriteString("# Pantry Skillet\n\n")
	sb.WriteString("A quick one-pan dish.\n\n## Ingredients\n\n")
	for _, item := range strings.Split(ingredients, ",") {
		if item = strings.TrimSpace(item); item != "" {
			fmt.Fprintf(&sb, "- %s\n", item)
		}
	}
	sb.WriteString("\n## Instructions\n\n1. Prep everything.\n2. Cook in a hot pan until done.\n3. Season and serve.\n")

	text := sb.String()
	return &Completion{Text: text, OutputTokens: len(strings.Fields(text))}, nil
}
