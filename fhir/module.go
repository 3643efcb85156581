package fhir

import "go.uber.org/fx"

var Module = fx.Provide(
	NewClientConfig,
	NewClient,
)
