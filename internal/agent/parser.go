package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParseFailure classifies why a thought did not yield an action.
type ParseFailure int

const (
	// FailureNoAction means the thought carried no Action: directive.
	FailureNoAction ParseFailure = iota
	// FailureUnknownAction means the named action is not registered.
	FailureUnknownAction
	// FailureArity means the argument count is outside the accepted range.
	FailureArity
)

func (f ParseFailure) String() string {
	switch f {
	case FailureNoAction:
		return "no_action"
	case FailureUnknownAction:
		return "unknown_action"
	case FailureArity:
		return "arity"
	default:
		return "ParseFailure(" + strconv.Itoa(int(f)) + ")"
	}
}

// ParseError is returned when a thought cannot be turned into an action.
// Its message is fed back to the model verbatim.
type ParseError struct {
	Failure ParseFailure
	Action  string
	Message string
}

func (e *ParseError) Error() string { return e.Message }

// Action is a tool invocation parsed from a thought.
type Action struct {
	Name string
	Args []string
}

// Joined renders the arguments the way they appear in observations.
func (a Action) Joined() string {
	return strings.Join(a.Args, ", ")
}

// String renders name(args).
func (a Action) String() string {
	return a.Name + "(" + a.Joined() + ")"
}

// actionRe matches "Action: name(args)". The argument span is greedy and
// runs to the last closing parenthesis, newlines included.
var actionRe = regexp.MustCompile(`(?s)Action:\s*(\w+)\((.*)\)`)

// stopLineRe matches a line where the model starts writing the next turn
// itself.
var stopLineRe = regexp.MustCompile(`(?m)^[ \t]*(PAUSE|Observation:)`)

// cutAtStopLine drops everything from the first PAUSE or Observation: line
// after the Action: marker.
func cutAtStopLine(thought string) string {
	i := strings.Index(thought, "Action:")
	if i < 0 {
		return thought
	}
	if loc := stopLineRe.FindStringIndex(thought[i:]); loc != nil {
		return thought[:i+loc[0]]
	}
	return thought
}

// namedArgRe matches a leading keyword prefix such as `city_name=`.
var namedArgRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*\s*=\s*`)

// ParseAction extracts a single action invocation from a thought and checks
// it against the registry.
func ParseAction(thought string, tools *ToolRegistry) (*Action, error) {
	m := actionRe.FindStringSubmatch(cutAtStopLine(thought))
	if m == nil {
		return nil, &ParseError{
			Failure: FailureNoAction,
			Message: "No valid action found in the thought.",
		}
	}

	name, raw := m[1], m[2]
	tool, ok := tools.Get(name)
	if !ok {
		return nil, &ParseError{
			Failure: FailureUnknownAction,
			Action:  name,
			Message: fmt.Sprintf("Invalid action '%s'. Available actions are: %s",
				name, strings.Join(tools.Names(), ", ")),
		}
	}

	args := SplitArguments(raw)
	lo, hi := arityRange(tool.Descriptor())
	if len(args) < lo || len(args) > hi {
		return nil, &ParseError{
			Failure: FailureArity,
			Action:  name,
			Message: fmt.Sprintf("Invalid number of arguments for action '%s'. Expected %s, got %d.",
				name, describeRange(lo, hi), len(args)),
		}
	}

	return &Action{Name: name, Args: args}, nil
}

// arityRange derives the accepted argument count from the declared names.
// Trailing arguments are optional; at least one is required when any are
// declared.
func arityRange(d ToolDescriptor) (int, int) {
	n := len(d.ArgumentNames)
	if n == 0 {
		return 0, 0
	}
	return 1, n
}

// describeRange renders e.g. "1, 2 or 3".
func describeRange(lo, hi int) string {
	if lo == hi {
		return strconv.Itoa(lo)
	}
	parts := make([]string, 0, hi-lo+1)
	for i := lo; i < hi; i++ {
		parts = append(parts, strconv.Itoa(i))
	}
	return strings.Join(parts, ", ") + " or " + strconv.Itoa(hi)
}

// SplitArguments splits a raw argument list on top-level commas. Commas
// nested in braces or inside a quoted string are kept. Each argument is
// cleaned with cleanArgument. A blank list has no arguments.
func SplitArguments(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var (
		args  []string
		cur   strings.Builder
		depth int
		quote rune
	)

	for _, ch := range raw {
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '{':
			depth++
		case ch == '}':
			if depth > 0 {
				depth--
			}
		}

		if ch == ',' && depth == 0 && quote == 0 {
			args = append(args, cleanArgument(cur.String()))
			cur.Reset()
			continue
		}
		cur.WriteRune(ch)
	}

	if cur.Len() > 0 {
		args = append(args, cleanArgument(cur.String()))
	}
	return args
}

// cleanArgument trims whitespace, drops a keyword prefix, strips matching
// surrounding quotes and compacts brace-delimited JSON. Malformed JSON is
// returned unchanged.
func cleanArgument(arg string) string {
	arg = strings.TrimSpace(arg)
	arg = namedArgRe.ReplaceAllString(arg, "")

	if len(arg) >= 2 {
		first, last := arg[0], arg[len(arg)-1]
		if (first == '"' || first == '\'') && first == last {
			arg = arg[1 : len(arg)-1]
		}
	}

	if strings.HasPrefix(arg, "{") && strings.HasSuffix(arg, "}") {
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(arg)); err == nil {
			return buf.String()
		}
	}
	return arg
}
