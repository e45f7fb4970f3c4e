package wrap

import (
	"github.com/plumdale/spinwrap/internal/clock"
	"github.com/plumdale/spinwrap/internal/discord"
	"github.com/plumdale/spinwrap/internal/repository"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Membership, error) {
		repo := do.MustInvoke[repository.Repository](i)
		return NewMembership(repo), nil
	})
	do.Provide(injector, func(i do.Injector) (*Aggregator, error) {
		repo := do.MustInvoke[repository.Repository](i)
		membership := do.MustInvoke[*Membership](i)
		clk := do.MustInvoke[clock.Clock](i)
		return NewAggregator(repo, membership, clk), nil
	})
	do.Provide(injector, func(i do.Injector) (*Scheduler, error) {
		repo := do.MustInvoke[repository.Repository](i)
		membership := do.MustInvoke[*Membership](i)
		dc := do.MustInvoke[discord.Client](i)
		clk := do.MustInvoke[clock.Clock](i)
		return NewScheduler(repo, membership, dc, clk), nil
	})
}
