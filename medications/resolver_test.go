package medications_test

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/cardioview/dashboard-worker/fhir"
	fhirtest "github.com/cardioview/dashboard-worker/fhir/test"
	"github.com/cardioview/dashboard-worker/medications"
)

func medicationRequest(id, reference string) fhir.MedicationRequest {
	return fhir.MedicationRequest{
		ID:                  id,
		Status:              "active",
		MedicationReference: &fhir.Reference{Reference: reference},
	}
}

var _ = Describe("Resolver", func() {
	var client *fhirtest.Client
	var resolver medications.Resolver

	BeforeEach(func() {
		client = fhirtest.NewClient()
		client.SetMedication(&fhir.Medication{
			ID:   "42",
			Code: &fhir.CodeableConcept{Text: "Lisinopril 10 MG Oral Tablet"},
		})
		resolver = medications.NewResolver(client, zap.NewNop().Sugar())
	})

	It("resolves a medication reference to its display name", func() {
		entry := resolver.ResolveOne(context.Background(), medicationRequest("req-1", "Medication/42"))
		Expect(entry.RequestID).To(Equal("req-1"))
		Expect(entry.Status).To(Equal(medications.StatusActive))
		Expect(entry.Detail.DisplayName).To(Equal("Lisinopril 10 MG Oral Tablet"))
	})

	It("preserves input order", func() {
		client.SetMedication(&fhir.Medication{ID: "7", Code: &fhir.CodeableConcept{Text: "Metoprolol"}})
		entries := resolver.Resolve(context.Background(), []fhir.MedicationRequest{
			medicationRequest("req-1", "Medication/42"),
			medicationRequest("req-2", "Medication/7"),
			medicationRequest("req-3", "Medication/42"),
		})
		Expect(entries).To(HaveLen(3))
		Expect(entries[0].RequestID).To(Equal("req-1"))
		Expect(entries[1].RequestID).To(Equal("req-2"))
		Expect(entries[2].RequestID).To(Equal("req-3"))
		Expect(entries[1].Detail.DisplayName).To(Equal("Metoprolol"))
	})

	It("serves repeated resolutions from the cache", func() {
		request := medicationRequest("req-1", "Medication/42")
		resolver.ResolveOne(context.Background(), request)
		resolver.ResolveOne(context.Background(), request)
		Expect(client.Calls(fhirtest.MedicationKey("42"))).To(Equal(1))
	})

	It("coalesces concurrent lookups for the same reference into one call", func() {
		release := client.Gate(fhirtest.MedicationKey("42"))

		var wg sync.WaitGroup
		entries := make([]medications.ViewEntry, 2)
		for i := range entries {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				entries[i] = resolver.ResolveOne(context.Background(), medicationRequest("req", "Medication/42"))
			}()
		}

		// Both call sites are in flight before the lookup is allowed to
		// complete.
		Eventually(func() int { return client.Calls(fhirtest.MedicationKey("42")) }).Should(Equal(1))
		release()
		wg.Wait()

		Expect(client.Calls(fhirtest.MedicationKey("42"))).To(Equal(1))
		Expect(entries[0].Detail).To(Equal(entries[1].Detail))
		Expect(entries[0].Detail.DisplayName).To(Equal("Lisinopril 10 MG Oral Tablet"))
	})

	It("falls back to Unknown on resolution failure and does not retry", func() {
		client.FailWith(fhirtest.MedicationKey("99"), errors.New("server unavailable"))

		request := medicationRequest("req-9", "Medication/99")
		entry := resolver.ResolveOne(context.Background(), request)
		Expect(entry.Detail.DisplayName).To(Equal(medications.UnknownDisplayName))

		// The fallback is cached; a known-bad reference is not re-attempted.
		entry = resolver.ResolveOne(context.Background(), request)
		Expect(entry.Detail.DisplayName).To(Equal(medications.UnknownDisplayName))
		Expect(client.Calls(fhirtest.MedicationKey("99"))).To(Equal(1))
	})

	It("resolves inline concepts without a remote call", func() {
		entry := resolver.ResolveOne(context.Background(), fhir.MedicationRequest{
			ID:                        "req-5",
			Status:                    "active",
			MedicationCodeableConcept: &fhir.CodeableConcept{Text: "Amlodipine 5 MG"},
		})
		Expect(entry.Detail.DisplayName).To(Equal("Amlodipine 5 MG"))
		Expect(client.Calls(fhirtest.MedicationKey("req-5"))).To(Equal(0))
	})

	It("falls back to Unknown when the request has no medication reference", func() {
		entry := resolver.ResolveOne(context.Background(), fhir.MedicationRequest{ID: "req-6", Status: "active"})
		Expect(entry.Detail.DisplayName).To(Equal(medications.UnknownDisplayName))
	})
})
