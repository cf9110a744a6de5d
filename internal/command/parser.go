package command

import (
	"strings"

	"github.com/kapu/pokedex-go/internal/domain"
)

// Parse turns one input line into a command. "help" and "?" show usage,
// "lookup <name>" and a bare name both look up a creature. A "lookup" without
// a name still maps to lookup so the user is told a name is missing.
func Parse(line string) *domain.ParseResult {
	text := strings.TrimSpace(line)
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return &domain.ParseResult{Command: domain.CommandUnknown, Params: map[string]any{}}
	}

	switch strings.ToLower(parts[0]) {
	case "help", "?", "도움말":
		return &domain.ParseResult{Command: domain.CommandHelp, Params: map[string]any{}}
	case "lookup", "조회":
		name := strings.TrimSpace(strings.Join(parts[1:], " "))
		return &domain.ParseResult{Command: domain.CommandLookup, Params: map[string]any{"name": name}}
	}

	return &domain.ParseResult{Command: domain.CommandLookup, Params: map[string]any{"name": text}}
}

// Event wraps a parse result for the dispatcher.
func Event(result *domain.ParseResult) CommandEvent {
	if result == nil {
		return CommandEvent{Type: domain.CommandUnknown}
	}
	return CommandEvent{Type: result.Command, Params: result.Params}
}

func stringParam(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	value, _ := params[key].(string)
	return strings.TrimSpace(value)
}
