// Package discovery scans a FHIR server for patients with complete
// cardiovascular data. The dashboard itself only consumes the resulting
// patient ids as opaque inputs.
package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/cardioview/dashboard-worker/fhir"
)

const threadiness = 4

type Config struct {
	SearchLimit       int           `envconfig:"CARDIO_DISCOVERY_SEARCH_LIMIT" default:"50"`
	TargetCount       int           `envconfig:"CARDIO_DISCOVERY_TARGET_COUNT" default:"10"`
	RequestsPerSecond int           `envconfig:"CARDIO_DISCOVERY_REQUESTS_PER_SECOND" default:"10"`
	ProbeAttempts     uint          `envconfig:"CARDIO_DISCOVERY_PROBE_ATTEMPTS" default:"3"`
	ProbeRetryDelay   time.Duration `envconfig:"CARDIO_DISCOVERY_PROBE_RETRY_DELAY" default:"1s"`
}

func NewConfig() (Config, error) {
	config := Config{}
	err := envconfig.Process("", &config)
	return config, err
}

// Candidate describes what a probed patient has on record. BMI is derivable
// when both weight and height exist, so completeness requires demographics,
// at least one blood pressure reading, a weight and a height. Medications are
// counted but not required.
type Candidate struct {
	PatientID          string
	HasDemographics    bool
	BloodPressureCount int
	HasWeight          bool
	HasHeight          bool
	MedicationCount    int
}

func (c Candidate) Complete() bool {
	return c.HasDemographics && c.BloodPressureCount > 0 && c.HasWeight && c.HasHeight
}

// Finder probes patients with bounded concurrency, pacing requests against
// the shared public server and retrying transient probe failures.
type Finder struct {
	config  Config
	client  fhir.Client
	logger  *zap.SugaredLogger
	limiter ratelimit.Limiter
}

func NewFinder(config Config, client fhir.Client, logger *zap.SugaredLogger) *Finder {
	// A non-positive rate disables pacing instead of panicking in ratelimit.
	limiter := ratelimit.NewUnlimited()
	if config.RequestsPerSecond > 0 {
		limiter = ratelimit.New(config.RequestsPerSecond)
	}
	return &Finder{
		config:  config,
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// FindComplete probes up to SearchLimit patients and returns the candidates
// with complete cardiovascular data, at most TargetCount of them.
func (f *Finder) FindComplete(ctx context.Context) ([]Candidate, error) {
	var patients []fhir.Patient
	err := f.withRetry(func() error {
		var err error
		f.limiter.Take()
		patients, err = f.client.ListPatients(ctx, f.config.SearchLimit)
		return err
	})
	if err != nil {
		return nil, err
	}
	f.logger.Infow("probing patients for complete cardiovascular data", "count", len(patients))

	var (
		mu       sync.Mutex
		complete []Candidate
	)
	sem := semaphore.NewWeighted(threadiness)
	eg, egCtx := errgroup.WithContext(ctx)

	for i := range patients {
		if egCtx.Err() != nil {
			break
		}

		mu.Lock()
		enough := len(complete) >= f.config.TargetCount
		mu.Unlock()
		if enough {
			break
		}

		if err := sem.Acquire(egCtx, 1); err != nil {
			break
		}
		patientID := patients[i].ID
		eg.Go(func() error {
			defer sem.Release(1)
			candidate, err := f.probe(egCtx, patientID)
			if err != nil {
				f.logger.Warnw("could not probe patient", "patientId", patientID, zap.Error(err))
				return nil
			}
			if !candidate.Complete() {
				f.logger.Debugw("patient has incomplete data",
					"patientId", patientID,
					"bloodPressure", candidate.BloodPressureCount,
					"weight", candidate.HasWeight,
					"height", candidate.HasHeight,
					"medications", candidate.MedicationCount)
				return nil
			}
			mu.Lock()
			if len(complete) < f.config.TargetCount {
				complete = append(complete, candidate)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return complete, nil
}

func (f *Finder) probe(ctx context.Context, patientID string) (Candidate, error) {
	candidate := Candidate{PatientID: patientID}

	err := f.withRetry(func() error {
		f.limiter.Take()
		patient, err := f.client.GetPatient(ctx, patientID)
		if err != nil {
			return err
		}
		candidate.HasDemographics = len(patient.Name) > 0 && patient.BirthDate != ""
		return nil
	})
	if err != nil {
		return candidate, err
	}

	for _, probe := range []struct {
		code  string
		apply func([]fhir.Observation)
	}{
		{fhir.LoincBloodPressurePanel, func(o []fhir.Observation) { candidate.BloodPressureCount = len(o) }},
		{fhir.LoincBodyWeight, func(o []fhir.Observation) { candidate.HasWeight = len(o) > 0 }},
		{fhir.LoincBodyHeight, func(o []fhir.Observation) { candidate.HasHeight = len(o) > 0 }},
	} {
		probe := probe
		err := f.withRetry(func() error {
			f.limiter.Take()
			observations, err := f.client.ListObservations(ctx, patientID, probe.code)
			if err != nil {
				return err
			}
			probe.apply(observations)
			return nil
		})
		if err != nil {
			return candidate, err
		}
	}

	err = f.withRetry(func() error {
		f.limiter.Take()
		requests, err := f.client.ListActiveMedicationRequests(ctx, patientID)
		if err != nil {
			return err
		}
		candidate.MedicationCount = len(requests)
		return nil
	})
	return candidate, err
}

func (f *Finder) withRetry(fn retry.RetryableFunc) error {
	return retry.Do(
		fn,
		retry.Attempts(f.config.ProbeAttempts),
		retry.Delay(f.config.ProbeRetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}
