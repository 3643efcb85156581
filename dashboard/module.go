package dashboard

import "go.uber.org/fx"

var Module = fx.Provide(
	NewSession,
)
