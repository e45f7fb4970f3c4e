package session

import (
	"github.com/plumdale/spinwrap/internal/clock"
	"github.com/plumdale/spinwrap/internal/discord"
	"github.com/plumdale/spinwrap/internal/facts"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		clk := do.MustInvoke[clock.Clock](i)
		dc := do.MustInvoke[discord.Client](i)
		gen := do.MustInvoke[facts.Generator](i)
		return NewManager(clk, dc, gen), nil
	})
}
