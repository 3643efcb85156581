package test

import (
	"context"
	"fmt"
	"sync"

	"github.com/cardioview/dashboard-worker/fhir"
)

// Client is an in-memory fhir.Client for tests. Individual calls can be
// failed or gated (blocked until released) by key, and invocations are
// counted per key.
type Client struct {
	mu           sync.Mutex
	patients     map[string]*fhir.Patient
	patientOrder []string
	observations map[string][]fhir.Observation
	requests     map[string][]fhir.MedicationRequest
	medications  map[string]*fhir.Medication
	errors       map[string]error
	gates        map[string]chan struct{}
	calls        map[string]int
}

var _ fhir.Client = &Client{}

func NewClient() *Client {
	return &Client{
		patients:     make(map[string]*fhir.Patient),
		observations: make(map[string][]fhir.Observation),
		requests:     make(map[string][]fhir.MedicationRequest),
		medications:  make(map[string]*fhir.Medication),
		errors:       make(map[string]error),
		gates:        make(map[string]chan struct{}),
		calls:        make(map[string]int),
	}
}

func PatientKey(id string) string { return "Patient/" + id }

func ObservationKey(id, code string) string { return fmt.Sprintf("Observation/%s/%s", id, code) }

func MedicationRequestKey(id string) string { return "MedicationRequest/" + id }

func MedicationKey(id string) string { return "Medication/" + id }

func (c *Client) SetPatient(patient *fhir.Patient) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.patients[patient.ID]; !ok {
		c.patientOrder = append(c.patientOrder, patient.ID)
	}
	c.patients[patient.ID] = patient
}

func (c *Client) SetObservations(patientID, code string, observations []fhir.Observation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observations[ObservationKey(patientID, code)] = observations
}

func (c *Client) SetMedicationRequests(patientID string, requests []fhir.MedicationRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests[patientID] = requests
}

func (c *Client) SetMedication(medication *fhir.Medication) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.medications[medication.ID] = medication
}

// FailWith makes the call identified by key return the given error.
func (c *Client) FailWith(key string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors[key] = err
}

// Gate blocks the call identified by key until the returned release function
// is invoked.
func (c *Client) Gate(key string) (release func()) {
	gate := make(chan struct{})
	c.mu.Lock()
	c.gates[key] = gate
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

// Calls reports how many times the call identified by key was invoked.
func (c *Client) Calls(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[key]
}

func (c *Client) GetPatient(ctx context.Context, id string) (*fhir.Patient, error) {
	key := PatientKey(id)
	if err := c.enter(ctx, key); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	patient, ok := c.patients[id]
	if !ok {
		return nil, fhir.ErrNotFound
	}
	return patient, nil
}

func (c *Client) ListPatients(ctx context.Context, limit int) ([]fhir.Patient, error) {
	if err := c.enter(ctx, "Patient"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	patients := make([]fhir.Patient, 0, len(c.patientOrder))
	for _, id := range c.patientOrder {
		if len(patients) == limit {
			break
		}
		patients = append(patients, *c.patients[id])
	}
	return patients, nil
}

func (c *Client) ListObservations(ctx context.Context, patientID, code string) ([]fhir.Observation, error) {
	key := ObservationKey(patientID, code)
	if err := c.enter(ctx, key); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.observations[key], nil
}

func (c *Client) ListActiveMedicationRequests(ctx context.Context, patientID string) ([]fhir.MedicationRequest, error) {
	if err := c.enter(ctx, MedicationRequestKey(patientID)); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests[patientID], nil
}

func (c *Client) GetMedication(ctx context.Context, id string) (*fhir.Medication, error) {
	if err := c.enter(ctx, MedicationKey(id)); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	medication, ok := c.medications[id]
	if !ok {
		return nil, fhir.ErrNotFound
	}
	return medication, nil
}

// enter records the invocation, waits on the key's gate if one is set, and
// returns the configured error for the key, if any.
func (c *Client) enter(ctx context.Context, key string) error {
	c.mu.Lock()
	c.calls[key]++
	gate := c.gates[key]
	err := c.errors[key]
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
