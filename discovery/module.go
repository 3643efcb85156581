package discovery

import "go.uber.org/fx"

var Module = fx.Provide(
	NewConfig,
	NewFinder,
)
