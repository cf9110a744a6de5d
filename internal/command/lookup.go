package command

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/kapu/pokedex-go/internal/domain"
	"github.com/kapu/pokedex-go/pkg/errors"
	"go.uber.org/zap"
)

type LookupCommand struct {
	deps *Dependencies
}

func NewLookupCommand(deps *Dependencies) *LookupCommand {
	return &LookupCommand{deps: deps}
}

func (c *LookupCommand) Name() string {
	return "lookup"
}

func (c *LookupCommand) Description() string {
	return "Look up a creature by name"
}

// Execute reports lookup failures to the user and returns nil so the
// session keeps running. Only output failures are returned.
func (c *LookupCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	name := stringParam(params, "name")

	creature, err := c.deps.Lookup.Lookup(ctx, name)
	if err != nil {
		c.deps.Logger.Warn("Lookup failed", zap.String("name", name), zap.Error(err))
		return c.deps.SendError(cmdCtx.Source, describeLookupError(name, err))
	}

	payload, err := json.MarshalIndent(creature, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode creature %q: %w", creature.Name, err)
	}
	return c.deps.SendMessage(cmdCtx.Source, string(payload))
}

func describeLookupError(name string, err error) string {
	var validationErr *errors.ValidationError
	if stderrors.As(err, &validationErr) {
		return "Please enter a creature name."
	}

	var lookupErr *errors.LookupError
	if !stderrors.As(err, &lookupErr) {
		return fmt.Sprintf("Lookup of %q failed: %v", name, err)
	}

	switch lookupErr.Kind {
	case errors.KindNotFound:
		return fmt.Sprintf("%s %q was not found.", lookupErr.Resource, lookupErr.Name)
	case errors.KindNetworkFailure:
		return fmt.Sprintf("PokeAPI is unreachable right now, try %q again later.", name)
	case errors.KindMalformedResponse:
		return fmt.Sprintf("PokeAPI returned an unreadable %s for %q.", lookupErr.Resource, lookupErr.Name)
	default:
		return fmt.Sprintf("Lookup of %q failed: %v", name, err)
	}
}
