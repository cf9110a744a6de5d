package command

import (
	"context"

	"github.com/kapu/pokedex-go/internal/domain"
)

// CommandEvent is a parsed command waiting to be executed.
type CommandEvent struct {
	Type   domain.CommandType
	Params map[string]any
}

type Dispatcher interface {
	Publish(ctx context.Context, cmdCtx *domain.CommandContext, events ...CommandEvent) (int, error)
}

type sequentialDispatcher struct {
	registry *Registry
}

// NewSequentialDispatcher runs events one after another, keyed by command type.
// Unknown events are skipped; the first handler error stops the batch.
func NewSequentialDispatcher(registry *Registry) Dispatcher {
	return &sequentialDispatcher{registry: registry}
}

func (d *sequentialDispatcher) Publish(ctx context.Context, cmdCtx *domain.CommandContext, events ...CommandEvent) (int, error) {
	if d == nil || d.registry == nil {
		return 0, nil
	}

	executed := 0
	for _, event := range events {
		if event.Type == domain.CommandUnknown {
			continue
		}
		if err := ctx.Err(); err != nil {
			return executed, err
		}
		if err := d.registry.Execute(ctx, cmdCtx, event.Type.String(), copyParams(event.Params)); err != nil {
			return executed, err
		}
		executed++
	}
	return executed, nil
}

// handlers may mutate params; the caller's map stays untouched
func copyParams(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
