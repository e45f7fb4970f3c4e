package facts

import (
	"github.com/plumdale/spinwrap/internal/config"
	"github.com/plumdale/spinwrap/internal/facts"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (facts.Generator, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewHTTPGenerator(c.FactsAPIURL, c.FactsAPIKey, c.FactsModel, c.FactsMaxWords), nil
	})
}
