package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt(PromptConfig{
		Tools: []ToolDescriptor{
			{Name: "get_weather", ArgumentNames: []string{"city_name"}, Description: "Retrieves weather."},
			{Name: "internet_search", ArgumentNames: []string{"query"}, Description: "Searches the web."},
		},
		OperatorName:     "Ada",
		OperatorLocation: "London",
		Now:              time.Date(2026, 10, 18, 9, 15, 0, 0, time.UTC),
		ExtraPrompt:      "Answer in English.",
	})

	assert.Contains(t, prompt, "- get_weather(city_name): Retrieves weather.\n- internet_search(query): Searches the web.\n")
	assert.Contains(t, prompt, "Final Answer:")
	assert.Contains(t, prompt, "- Their name is Ada\n")
	assert.Contains(t, prompt, "- They live in London\n")
	assert.Contains(t, prompt, "- Today's date is 2026-10-18 - 09:15:00\n")
	assert.Contains(t, prompt, "Answer in English.")
}

func TestBuildSystemPrompt_Minimal(t *testing.T) {
	prompt := BuildSystemPrompt(PromptConfig{Now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})

	assert.Contains(t, prompt, "Your available actions are:\n\n(none)\n")
	assert.NotContains(t, prompt, "Their name is")
	assert.NotContains(t, prompt, "They live in")
}
