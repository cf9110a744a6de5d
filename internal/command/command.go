package command

import (
	"context"

	"github.com/kapu/pokedex-go/internal/domain"
	"go.uber.org/zap"
)

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error
}

// Lookuper resolves a creature by name.
type Lookuper interface {
	Lookup(ctx context.Context, name string) (*domain.Creature, error)
}

type Dependencies struct {
	Lookup      Lookuper
	Registry    *Registry
	SendMessage func(source, message string) error
	SendError   func(source, message string) error
	Logger      *zap.Logger
}
