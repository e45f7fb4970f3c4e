package command

import (
	"github.com/plumdale/spinwrap/internal/clock"
	"github.com/plumdale/spinwrap/internal/repository"
	"github.com/plumdale/spinwrap/internal/session"
	"github.com/plumdale/spinwrap/internal/wrap"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Router, error) {
		sessions := do.MustInvoke[*session.Manager](i)
		membership := do.MustInvoke[*wrap.Membership](i)
		repo := do.MustInvoke[repository.Repository](i)
		clk := do.MustInvoke[clock.Clock](i)
		return NewRouter(sessions, membership, repo, clk), nil
	})
}
