package worker_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/fx"

	"github.com/cardioview/dashboard-worker/worker"
)

var _ = Describe("Bootstrap", func() {
	Describe("Fx App", func() {
		var app *fx.App
		var components worker.Components

		BeforeEach(func() {
			init := func(c worker.Components) {
				components = c
			}
			opts := append([]fx.Option{}, worker.Modules...)
			opts = append(opts, fx.Invoke(init), fx.NopLogger)

			app = fx.New(opts...)
			Expect(app).ToNot(BeNil())
		})

		AfterEach(func() {
			components = worker.Components{}
		})

		It("builds the DI graph successfully", func() {
			Expect(app.Err()).ToNot(HaveOccurred())
		})

		It("instantiates a health check server", func() {
			Expect(components.HealthCheckServer).ToNot(BeNil())
		})

		It("instantiates a patient session", func() {
			Expect(components.Session).ToNot(BeNil())
		})

		It("instantiates a discovery finder", func() {
			Expect(components.Finder).ToNot(BeNil())
		})
	})
})
