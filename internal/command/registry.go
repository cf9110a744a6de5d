package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kapu/pokedex-go/internal/domain"
)

var ErrUnknownCommand = errors.New("unknown command")

// Registry maps lowercase command names to handlers.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds handlers; a later handler with the same name replaces the earlier one.
func (r *Registry) Register(handlers ...Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range handlers {
		if h == nil {
			continue
		}
		r.commands[strings.ToLower(h.Name())] = h
	}
}

// Lookup finds the handler for name, ignoring case.
func (r *Registry) Lookup(name string) (Command, bool) {
	if r == nil || name == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.commands[strings.ToLower(name)]
	return h, ok
}

func (r *Registry) Execute(ctx context.Context, cmdCtx *domain.CommandContext, name string, params map[string]any) error {
	if r == nil {
		return fmt.Errorf("command registry is nil")
	}
	h, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return h.Execute(ctx, cmdCtx, params)
}

func (r *Registry) Count() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Commands returns the registered handlers sorted by name.
func (r *Registry) Commands() []Command {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	out := make([]Command, 0, len(r.commands))
	for _, h := range r.commands {
		out = append(out, h)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
