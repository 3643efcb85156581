package worker

import (
	"context"
	"log"
	"net/http"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"
)

type HealthCheckConfig struct {
	Address string `envconfig:"CARDIO_HEALTHCHECK_ADDRESS" default:":8080"`
}

func healthCheckServerProvider() (*http.Server, error) {
	config := HealthCheckConfig{}
	if err := envconfig.Process("", &config); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return &http.Server{
		Addr:    config.Address,
		Handler: mux,
	}, nil
}

func startHealthCheckServer(components Components) {
	components.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := components.HealthCheckServer.ListenAndServe(); err != nil {
					log.Printf("http listen and serve error: %v", err)
					_ = components.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return components.HealthCheckServer.Shutdown(ctx)
		},
	})
}
