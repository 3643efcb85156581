package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cardioview/dashboard-worker/fhir"
	"github.com/cardioview/dashboard-worker/medications"
	"github.com/cardioview/dashboard-worker/metrics"
	"github.com/cardioview/dashboard-worker/series"
)

var (
	// ErrSuperseded is reported when a load result is discarded because a
	// newer patient was selected while the load was in flight.
	ErrSuperseded = errors.New("dashboard: load superseded by a newer patient selection")
	// ErrNoModel is reported when a mutation is attempted before a patient
	// has been loaded successfully.
	ErrNoModel = errors.New("dashboard: no patient loaded")
)

// Session owns the dashboard model for one active patient at a time. Every
// call to Load increments the generation counter; results tagged with a
// superseded generation are discarded at their completion point, which is the
// sole cancellation mechanism.
type Session struct {
	client   fhir.Client
	deriver  *metrics.Deriver
	resolver medications.Resolver
	logger   *zap.SugaredLogger

	mu          sync.Mutex
	generation  uint64
	state       State
	model       *Model
	pendingMeds *pendingMedications
}

// pendingMedications holds a resolved medication list that settled before the
// series commit of the same load.
type pendingMedications struct {
	generation  uint64
	list        medications.List
	unavailable bool
}

func NewSession(client fhir.Client, deriver *metrics.Deriver, resolver medications.Resolver, logger *zap.SugaredLogger) *Session {
	return &Session{
		client:   client,
		deriver:  deriver,
		resolver: resolver,
		logger:   logger.With("sessionId", uuid.NewString()),
		state:    StateEmpty,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Model returns a snapshot of the current model, or nil when no patient is
// loaded. The snapshot is detached from later medication mutations.
func (s *Session) Model() *Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyModel()
}

// Reset discards the current model and suppresses any in-flight load.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.state = StateEmpty
	s.model = nil
	s.pendingMeds = nil
}

// Load replaces the session's model with the given patient's data. The five
// record fetches are issued concurrently with no ordering guarantee among
// their completions; the series merge runs after the demographics and metric
// fetches settle, while medication resolution proceeds independently.
// Demographics are mandatory; any other failed or empty category only flags
// that section unavailable.
func (s *Session) Load(ctx context.Context, patientID string) (*Model, error) {
	generation := s.begin(patientID)

	var (
		patient    *fhir.Patient
		patientErr error

		bpObs, weightObs, heightObs []fhir.Observation
		bpErr, weightErr, heightErr error
	)

	medsSettled := make(chan struct{})
	go func() {
		defer close(medsSettled)
		s.loadMedications(ctx, generation, patientID)
	}()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		patient, patientErr = s.client.GetPatient(egCtx, patientID)
		return nil
	})
	eg.Go(func() error {
		bpObs, bpErr = s.client.ListObservations(egCtx, patientID, fhir.LoincBloodPressurePanel)
		return nil
	})
	eg.Go(func() error {
		weightObs, weightErr = s.client.ListObservations(egCtx, patientID, fhir.LoincBodyWeight)
		return nil
	})
	eg.Go(func() error {
		heightObs, heightErr = s.client.ListObservations(egCtx, patientID, fhir.LoincBodyHeight)
		return nil
	})
	_ = eg.Wait()

	availability := Availability{
		BloodPressureUnavailable: s.categoryUnavailable(patientID, "bloodPressure", bpObs, bpErr),
		WeightUnavailable:        s.categoryUnavailable(patientID, "weight", weightObs, weightErr),
		HeightUnavailable:        s.categoryUnavailable(patientID, "height", heightObs, heightErr),
	}

	bp := s.deriver.BloodPressure(bpObs)
	anthro := s.deriver.BodyMass(weightObs, heightObs)
	points := series.Merge(bp, anthro)

	seriesErr := s.applySeries(generation, patientID, patient, patientErr, points, availability)
	<-medsSettled
	if seriesErr != nil {
		return nil, seriesErr
	}
	return s.snapshot(generation)
}

// StopMedication marks the matching entry of the current model as stopped.
func (s *Session) StopMedication(requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return ErrNoModel
	}
	return s.model.Medications.Stop(requestID)
}

// AddMedication resolves a newly prescribed request and appends it to the
// current model's medication list.
func (s *Session) AddMedication(ctx context.Context, request fhir.MedicationRequest) error {
	s.mu.Lock()
	generation := s.generation
	hasModel := s.model != nil
	s.mu.Unlock()
	if !hasModel {
		return ErrNoModel
	}

	// Resolution happens outside the lock so the entry is render-ready
	// before it becomes visible.
	entry := s.resolver.ResolveOne(ctx, request)

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return ErrSuperseded
	}
	if s.model == nil {
		return ErrNoModel
	}
	s.model.Medications.Add(entry)
	return nil
}

func (s *Session) begin(patientID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.state = StateLoading
	s.model = nil
	s.pendingMeds = nil
	s.logger.Infow("loading patient dashboard", "patientId", patientID, "generation", s.generation)
	return s.generation
}

func (s *Session) loadMedications(ctx context.Context, generation uint64, patientID string) {
	requests, err := s.client.ListActiveMedicationRequests(ctx, patientID)
	var list medications.List
	unavailable := err != nil || len(requests) == 0
	if err != nil {
		s.logger.Warnw("medications unavailable", "patientId", patientID, zap.Error(err))
	} else {
		list = s.resolver.Resolve(ctx, requests)
	}
	s.applyMedications(generation, list, unavailable)
}

func (s *Session) categoryUnavailable(patientID, category string, observations []fhir.Observation, err error) bool {
	if err != nil {
		s.logger.Warnw("observation category unavailable",
			"patientId", patientID, "category", category, zap.Error(err))
		return true
	}
	return len(observations) == 0
}

// applySeries commits the demographics and merged series for a load. A stale
// generation is discarded; a demographics failure is fatal for the session.
func (s *Session) applySeries(generation uint64, patientID string, patient *fhir.Patient, patientErr error, points []series.Point, availability Availability) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		s.logger.Debugw("discarding stale load result", "patientId", patientID, "generation", generation)
		return ErrSuperseded
	}
	if patientErr != nil {
		s.state = StateFailed
		s.model = nil
		return fmt.Errorf("loading demographics for patient %s: %w", patientID, patientErr)
	}

	model := &Model{
		Demographics: demographicsOf(patient),
		Series:       points,
		Availability: availability,
	}
	if pending := s.pendingMeds; pending != nil && pending.generation == generation {
		model.Medications = pending.list
		model.Availability.MedicationsUnavailable = pending.unavailable
		s.pendingMeds = nil
	}
	s.model = model
	s.state = stateFor(model.Availability)
	return nil
}

// applyMedications commits a settled medication list. When it lands before
// the series commit of the same load it is staged until the model exists.
func (s *Session) applyMedications(generation uint64, list medications.List, unavailable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		s.logger.Debugw("discarding stale medication results", "generation", generation)
		return
	}
	if s.model == nil {
		s.pendingMeds = &pendingMedications{
			generation:  generation,
			list:        list,
			unavailable: unavailable,
		}
		return
	}
	s.model.Medications = list
	s.model.Availability.MedicationsUnavailable = unavailable
	s.state = stateFor(s.model.Availability)
}

func (s *Session) snapshot(generation uint64) (*Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation || s.model == nil {
		return nil, ErrSuperseded
	}
	return s.copyModel(), nil
}

// copyModel clones the model with its own medication list so snapshot
// holders do not observe later Stop/Add mutations. Callers must hold s.mu.
func (s *Session) copyModel() *Model {
	if s.model == nil {
		return nil
	}
	model := *s.model
	model.Medications = append(medications.List(nil), s.model.Medications...)
	return &model
}

func stateFor(availability Availability) State {
	if availability.Degraded() {
		return StatePartiallyAvailable
	}
	return StateReady
}
