package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parserRegistry(t *testing.T) *ToolRegistry {
	t.Helper()
	reg, err := NewToolRegistry(
		echoTool("get_weather", "city_name"),
		echoTool("write_email", "to", "subject", "body", "draft_id"),
		echoTool("now"),
	)
	require.NoError(t, err)
	return reg
}

func requireParseError(t *testing.T, err error, failure ParseFailure) *ParseError {
	t.Helper()
	var pe *ParseError
	require.True(t, errors.As(err, &pe), "expected *ParseError, got %v", err)
	assert.Equal(t, failure, pe.Failure)
	return pe
}

func TestParseAction_NoAction(t *testing.T) {
	_, err := ParseAction("Thought: I know this already.", parserRegistry(t))
	pe := requireParseError(t, err, FailureNoAction)
	assert.Equal(t, "No valid action found in the thought.", pe.Error())
}

func TestParseAction_Simple(t *testing.T) {
	a, err := ParseAction("Thought: check the weather.\nAction: get_weather(Buenos Aires)\nPAUSE", parserRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, "get_weather", a.Name)
	assert.Equal(t, []string{"Buenos Aires"}, a.Args)
	assert.Equal(t, "get_weather(Buenos Aires)", a.String())
}

func TestParseAction_JSONArgument(t *testing.T) {
	thought := `Action: write_email({"to": "a, b", "subject": "s, t"})`
	a, err := ParseAction(thought, parserRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, "write_email", a.Name)
	assert.Equal(t, []string{`{"to":"a, b","subject":"s, t"}`}, a.Args)
}

func TestParseAction_UnknownAction(t *testing.T) {
	_, err := ParseAction("Action: fly_to_moon(now)", parserRegistry(t))
	pe := requireParseError(t, err, FailureUnknownAction)
	assert.Equal(t, "fly_to_moon", pe.Action)
	assert.Equal(t, "Invalid action 'fly_to_moon'. Available actions are: get_weather, write_email, now", pe.Error())
}

func TestParseAction_Arity(t *testing.T) {
	reg := parserRegistry(t)

	tests := []struct {
		name    string
		thought string
		want    string
	}{
		{
			"too many for single argument",
			"Action: get_weather(Paris, France)",
			"Invalid number of arguments for action 'get_weather'. Expected 1, got 2.",
		},
		{
			"too few",
			"Action: get_weather()",
			"Invalid number of arguments for action 'get_weather'. Expected 1, got 0.",
		},
		{
			"range",
			"Action: write_email(a, b, c, d, e)",
			"Invalid number of arguments for action 'write_email'. Expected 1, 2, 3 or 4, got 5.",
		},
		{
			"no declared arguments",
			"Action: now(today)",
			"Invalid number of arguments for action 'now'. Expected 0, got 1.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAction(tt.thought, reg)
			pe := requireParseError(t, err, FailureArity)
			assert.Equal(t, tt.want, pe.Error())
		})
	}
}

func TestParseAction_OptionalTrailingArguments(t *testing.T) {
	a, err := ParseAction(`Action: write_email(bob@example.com, "Hi, Bob", Hello there)`, parserRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"bob@example.com", "Hi, Bob", "Hello there"}, a.Args)

	a, err = ParseAction("Action: now()", parserRegistry(t))
	require.NoError(t, err)
	assert.Empty(t, a.Args)

	a, err = ParseAction("Action: now( )", parserRegistry(t))
	require.NoError(t, err)
	assert.Empty(t, a.Args)
}

func TestParseAction_StopsAtInventedObservation(t *testing.T) {
	thought := "Thought: check it\nAction: get_weather(Paris)\nPAUSE\nObservation: (pending)"
	a, err := ParseAction(thought, parserRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris"}, a.Args)

	thought = "Action: get_weather(Rome)\nObservation: Weather in Rome: (cloudy)"
	a, err = ParseAction(thought, parserRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Rome"}, a.Args)
}

func TestParseAction_MultilineArguments(t *testing.T) {
	thought := "Action: write_email(bob@example.com, Update, Line one\nLine two (with parens))"
	a, err := ParseAction(thought, parserRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"bob@example.com", "Update", "Line one\nLine two (with parens)"}, a.Args)
}

func TestSplitArguments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "  \n ", nil},
		{"single", "Paris", []string{"Paris"}},
		{"trims", "  a ,  b  ", []string{"a", "b"}},
		{"keyword prefix", "city_name=London", []string{"London"}},
		{"keyword prefix with spaces and quotes", `city_name = "New York, NY"`, []string{"New York, NY"}},
		{"single quotes", `'a, b', c`, []string{"a, b", "c"}},
		{"other quote is literal", `"it's fine", x`, []string{"it's fine", "x"}},
		{"nested braces", `{"a": {"b": 1, "c": 2}}, z`, []string{`{"a":{"b":1,"c":2}}`, "z"}},
		{"malformed json passes through", `{not json, really}`, []string{"{not json, really}"}},
		{"trailing empty argument kept", "a, ", []string{"a", ""}},
		{"key order preserved", `{"z": 1, "a": 2}`, []string{`{"z":1,"a":2}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitArguments(tt.raw))
		})
	}
}

func TestParseFailure_String(t *testing.T) {
	assert.Equal(t, "no_action", FailureNoAction.String())
	assert.Equal(t, "unknown_action", FailureUnknownAction.String())
	assert.Equal(t, "arity", FailureArity.String())
	assert.Equal(t, "ParseFailure(7)", ParseFailure(7).String())
}
