package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/kapu/pokedex-go/internal/domain"
)

type HelpCommand struct {
	deps *Dependencies
}

func NewHelpCommand(deps *Dependencies) *HelpCommand {
	return &HelpCommand{deps: deps}
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Description() string {
	return "Show available commands"
}

func (c *HelpCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	var sb strings.Builder
	sb.WriteString("Usage: <name> | lookup <name> | help\n")
	for _, cmd := range c.deps.Registry.Commands() {
		fmt.Fprintf(&sb, "  %-8s %s\n", cmd.Name(), cmd.Description())
	}
	return c.deps.SendMessage(cmdCtx.Source, strings.TrimRight(sb.String(), "\n"))
}
