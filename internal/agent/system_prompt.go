package agent

import (
	"fmt"
	"strings"
	"time"
)

// PromptConfig controls system prompt generation.
type PromptConfig struct {
	Tools            []ToolDescriptor
	OperatorName     string
	OperatorLocation string
	Now              time.Time
	ExtraPrompt      string
}

// BuildSystemPrompt constructs the instruction block that precedes the
// rendered context window on every model call.
func BuildSystemPrompt(cfg PromptConfig) string {
	var b strings.Builder

	b.WriteString("You run in a loop of Thought, Action, PAUSE, Observation.\n")
	b.WriteString("At the end of the loop you output a Final Answer.\n")
	b.WriteString("Use Thought to describe your thoughts about the question you have been asked.\n")
	b.WriteString("Use Action to run one of the actions available to you, then return PAUSE.\n")
	b.WriteString("Observation will be the result of running those actions.\n")

	b.WriteString("\nYour available actions are:\n\n")
	if len(cfg.Tools) == 0 {
		b.WriteString("(none)\n")
	}
	for _, t := range cfg.Tools {
		fmt.Fprintf(&b, "- %s: %s\n", t.Signature(), t.Description)
	}

	b.WriteString("\nExample session:\n\n")
	b.WriteString("Question: What is the weather in Paris?\n")
	b.WriteString("Thought: I should look up the current weather in Paris.\n")
	b.WriteString("Action: get_weather(Paris)\n")
	b.WriteString("PAUSE\n\n")
	b.WriteString("You will be called again with this:\n\n")
	b.WriteString("Observation: Weather in Paris: clear sky, 21°C\n\n")
	b.WriteString("You then output:\n\n")
	b.WriteString("Final Answer: It is sunny in Paris, 21°C.\n")

	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	b.WriteString("\nIn case needed, here you have context about the user:\n")
	if cfg.OperatorName != "" {
		fmt.Fprintf(&b, "- Their name is %s\n", cfg.OperatorName)
	}
	if cfg.OperatorLocation != "" {
		fmt.Fprintf(&b, "- They live in %s\n", cfg.OperatorLocation)
	}
	fmt.Fprintf(&b, "- Today's date is %s - %s\n", now.Format("2006-01-02"), now.Format("15:04:05"))

	if cfg.ExtraPrompt != "" {
		b.WriteString("\n")
		b.WriteString(cfg.ExtraPrompt)
		b.WriteString("\n")
	}

	return b.String()
}
