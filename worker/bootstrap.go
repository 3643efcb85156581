package worker

import (
	"net/http"

	"go.uber.org/fx"

	"github.com/cardioview/dashboard-worker/dashboard"
	"github.com/cardioview/dashboard-worker/discovery"
	"github.com/cardioview/dashboard-worker/fhir"
	"github.com/cardioview/dashboard-worker/medications"
	"github.com/cardioview/dashboard-worker/metrics"
)

var dependencies = fx.Provide(
	loggerProvider,
	healthCheckServerProvider,
)

var Modules = []fx.Option{
	dependencies,
	fhir.Module,
	metrics.Module,
	medications.Module,
	dashboard.Module,
	discovery.Module,
}

func New() *fx.App {
	invokes := fx.Invoke(
		startHealthCheckServer,
	)
	return fx.New(append(Modules, invokes)...)
}

type Components struct {
	fx.In

	Session           *dashboard.Session
	Finder            *discovery.Finder
	HealthCheckServer *http.Server
	Lifecycle         fx.Lifecycle
	Shutdowner        fx.Shutdowner
}
