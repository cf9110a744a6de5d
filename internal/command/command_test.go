package command

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/kapu/pokedex-go/internal/domain"
	"github.com/kapu/pokedex-go/pkg/errors"
	"go.uber.org/zap"
)

type fakeLookup struct {
	creature *domain.Creature
	err      error
	calls    []string
}

func (f *fakeLookup) Lookup(_ context.Context, name string) (*domain.Creature, error) {
	f.calls = append(f.calls, name)
	return f.creature, f.err
}

type sink struct {
	messages []string
	errors   []string
}

func newDeps(lookup Lookuper, out *sink) *Dependencies {
	deps := &Dependencies{
		Lookup:   lookup,
		Registry: NewRegistry(),
		SendMessage: func(_, message string) error {
			out.messages = append(out.messages, message)
			return nil
		},
		SendError: func(_, message string) error {
			out.errors = append(out.errors, message)
			return nil
		},
		Logger: zap.NewNop(),
	}
	deps.Registry.Register(NewLookupCommand(deps), NewHelpCommand(deps))
	return deps
}

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want domain.CommandType
		name string
	}{
		{"pikachu", domain.CommandLookup, "pikachu"},
		{"  lookup Pikachu  ", domain.CommandLookup, "Pikachu"},
		{"LOOKUP mr-mime", domain.CommandLookup, "mr-mime"},
		{"help", domain.CommandHelp, ""},
		{"?", domain.CommandHelp, ""},
		{"lookup", domain.CommandLookup, ""},
		{"   ", domain.CommandUnknown, ""},
	}

	for _, tt := range tests {
		got := Parse(tt.line)
		if got.Command != tt.want {
			t.Fatalf("Parse(%q) command = %s, want %s", tt.line, got.Command, tt.want)
		}
		if name := stringParam(got.Params, "name"); name != tt.name {
			t.Fatalf("Parse(%q) name = %q, want %q", tt.line, name, tt.name)
		}
	}
}

func TestLookupCommandWritesJSON(t *testing.T) {
	lookup := &fakeLookup{creature: &domain.Creature{
		Name:        "pikachu",
		PrimaryType: domain.TypeElectric,
		ImageRef:    "url1",
		Moves:       []domain.Move{{Name: "thunder-shock", Type: domain.TypeElectric, LearnedBy: "pikachu"}},
	}}
	out := &sink{}
	deps := newDeps(lookup, out)

	err := deps.Registry.Execute(context.Background(), domain.NewCommandContext("stdin", "pikachu"), "lookup", map[string]any{"name": " pikachu "})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(lookup.calls) != 1 || lookup.calls[0] != "pikachu" {
		t.Fatalf("unexpected lookup calls: %v", lookup.calls)
	}
	if len(out.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(out.messages))
	}

	var decoded domain.Creature
	if err := json.Unmarshal([]byte(out.messages[0]), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded.Name != "pikachu" || decoded.PrimaryType != domain.TypeElectric || len(decoded.Moves) != 1 {
		t.Fatalf("unexpected decoded creature: %+v", decoded)
	}
	if !strings.Contains(out.messages[0], "\n  \"primaryType\"") {
		t.Fatalf("expected indented output, got %s", out.messages[0])
	}
}

func TestLookupCommandReportsFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", errors.NewNotFoundError("pokemon", "missingno"), `pokemon "missingno" was not found`},
		{"network", errors.NewNetworkError("move", "growl", 503, fmt.Errorf("boom")), "unreachable"},
		{"malformed", errors.NewMalformedError("move", "growl", fmt.Errorf("no type")), `unreadable move for "growl"`},
		{"validation", errors.NewValidationError("creature name is required", "name", ""), "enter a creature name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &sink{}
			deps := newDeps(&fakeLookup{err: tt.err}, out)

			err := NewLookupCommand(deps).Execute(context.Background(), domain.NewCommandContext("stdin", "x"), map[string]any{"name": "missingno"})
			if err != nil {
				t.Fatalf("lookup failures must not end the session, got %v", err)
			}
			if len(out.messages) != 0 {
				t.Fatalf("unexpected message output: %v", out.messages)
			}
			if len(out.errors) != 1 || !strings.Contains(out.errors[0], tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, out.errors)
			}
		})
	}
}

func TestHelpCommandListsCommands(t *testing.T) {
	out := &sink{}
	deps := newDeps(&fakeLookup{}, out)

	if err := deps.Registry.Execute(context.Background(), domain.NewCommandContext("stdin", "help"), "HELP", nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(out.messages) != 1 {
		t.Fatalf("expected one help message, got %d", len(out.messages))
	}
	lines := strings.Split(out.messages[0], "\n")
	if len(lines) != 3 {
		t.Fatalf("expected usage plus two commands, got %q", out.messages[0])
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[1]), "help") || !strings.HasPrefix(strings.TrimSpace(lines[2]), "lookup") {
		t.Fatalf("expected commands sorted by name: %q", out.messages[0])
	}
}

func TestRegistryUnknownCommand(t *testing.T) {
	registry := NewRegistry()
	err := registry.Execute(context.Background(), domain.NewCommandContext("stdin", "x"), "evolve", nil)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
	if registry.Count() != 0 {
		t.Fatalf("expected empty registry")
	}
}

func TestDispatcherSkipsUnknownAndClonesParams(t *testing.T) {
	lookup := &fakeLookup{creature: &domain.Creature{Name: "eevee"}}
	out := &sink{}
	deps := newDeps(lookup, out)
	dispatcher := NewSequentialDispatcher(deps.Registry)

	parsed := Parse("lookup eevee")
	executed, err := dispatcher.Publish(context.Background(), domain.NewCommandContext("stdin", "lookup eevee"),
		Event(Parse("")),
		Event(parsed),
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if executed != 1 {
		t.Fatalf("expected one executed command, got %d", executed)
	}
	if len(lookup.calls) != 1 || lookup.calls[0] != "eevee" {
		t.Fatalf("unexpected lookup calls: %v", lookup.calls)
	}
	if len(parsed.Params) != 1 {
		t.Fatalf("expected original params to remain unchanged, got %v", parsed.Params)
	}
}
