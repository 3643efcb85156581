package medications

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/cardioview/dashboard-worker/fhir"
)

// Resolver maps medication requests to display-ready entries. Resolved
// details are cached for the lifetime of the resolver and shared across
// patient loads; medication content is immutable so the cache is never
// invalidated. Failed lookups are cached as UnknownDisplayName and are not
// retried within the session.
type Resolver interface {
	Resolve(ctx context.Context, requests []fhir.MedicationRequest) List
	ResolveOne(ctx context.Context, request fhir.MedicationRequest) ViewEntry
}

type resolver struct {
	client fhir.Client
	logger *zap.SugaredLogger

	mu    sync.RWMutex
	cache map[string]Detail
	group singleflight.Group
}

var _ Resolver = &resolver{}

func NewResolver(client fhir.Client, logger *zap.SugaredLogger) Resolver {
	return &resolver{
		client: client,
		logger: logger,
		cache:  make(map[string]Detail),
	}
}

// Resolve resolves every request concurrently and returns entries in input
// order. Resolution never fails; unresolvable references fall back to
// UnknownDisplayName.
func (r *resolver) Resolve(ctx context.Context, requests []fhir.MedicationRequest) List {
	entries := make(List, len(requests))
	eg, egCtx := errgroup.WithContext(ctx)
	for i := range requests {
		i := i
		eg.Go(func() error {
			entries[i] = r.ResolveOne(egCtx, requests[i])
			return nil
		})
	}
	_ = eg.Wait()
	return entries
}

func (r *resolver) ResolveOne(ctx context.Context, request fhir.MedicationRequest) ViewEntry {
	entry := ViewEntry{
		RequestID: request.ID,
		Status:    statusOf(request),
	}

	// Inline concepts carry their own display text and need no lookup.
	if request.MedicationCodeableConcept != nil {
		entry.Detail = detailFromText(request.MedicationCodeableConcept.DisplayName())
		return entry
	}
	if request.MedicationReference == nil || request.MedicationReference.Reference == "" {
		r.logger.Debugw("medication request without medication reference", "requestId", request.ID)
		entry.Detail = Detail{DisplayName: UnknownDisplayName}
		return entry
	}

	entry.Reference = request.MedicationReference.Reference
	entry.Detail = r.lookup(ctx, request.MedicationReference)
	return entry
}

// lookup returns the cached detail for a reference, coalescing concurrent
// cache misses into a single remote call per key.
func (r *resolver) lookup(ctx context.Context, reference *fhir.Reference) Detail {
	key := reference.Reference

	r.mu.RLock()
	detail, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return detail
	}

	result, _, _ := r.group.Do(key, func() (interface{}, error) {
		// A flight that completed between the cache check and Do sees
		// the populated cache here instead of fetching again.
		r.mu.RLock()
		detail, ok := r.cache[key]
		r.mu.RUnlock()
		if ok {
			return detail, nil
		}

		detail = r.fetch(ctx, reference)

		r.mu.Lock()
		r.cache[key] = detail
		r.mu.Unlock()
		return detail, nil
	})
	return result.(Detail)
}

func (r *resolver) fetch(ctx context.Context, reference *fhir.Reference) Detail {
	medication, err := r.client.GetMedication(ctx, reference.ID())
	if err != nil {
		r.logger.Errorw("could not resolve medication reference",
			"reference", reference.Reference, zap.Error(err))
		return Detail{ID: reference.ID(), DisplayName: UnknownDisplayName}
	}
	detail := detailFromText(medication.Code.DisplayName())
	detail.ID = medication.ID
	return detail
}

func detailFromText(text string) Detail {
	if text == "" {
		text = UnknownDisplayName
	}
	return Detail{DisplayName: text}
}

func statusOf(request fhir.MedicationRequest) Status {
	if request.Status == string(StatusStopped) {
		return StatusStopped
	}
	return StatusActive
}
