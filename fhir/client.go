package fhir

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kelseyhightower/envconfig"
)

// LOINC codes used by the cardiovascular dashboard.
const (
	LoincBloodPressurePanel = "55284-4"
	LoincBodyWeight         = "29463-7"
	LoincBodyHeight         = "8302-2"
	LoincSystolic           = "8480-6"
	LoincDiastolic          = "8462-4"
)

// ErrNotFound is returned when the server reports that a resource does not exist.
var ErrNotFound = errors.New("fhir: resource not found")

type ClientConfig struct {
	Address string `envconfig:"CARDIO_FHIR_ADDRESS" default:"https://r3.smarthealthit.org"`
	// Timeout of zero disables the client-side deadline. The upstream
	// behavior has no timeout; callers can opt in via the environment.
	Timeout        time.Duration `envconfig:"CARDIO_FHIR_TIMEOUT" default:"0"`
	SearchPageSize int           `envconfig:"CARDIO_FHIR_SEARCH_PAGE_SIZE" default:"100"`
}

func NewClientConfig() (ClientConfig, error) {
	config := ClientConfig{}
	err := envconfig.Process("", &config)
	return config, err
}

// Client is the read-only record gateway the dashboard consumes. Each call
// issues a single request with no retries; a failure is terminal for that
// category for the current load.
type Client interface {
	GetPatient(ctx context.Context, id string) (*Patient, error)
	ListPatients(ctx context.Context, limit int) ([]Patient, error)
	ListObservations(ctx context.Context, patientID, code string) ([]Observation, error)
	ListActiveMedicationRequests(ctx context.Context, patientID string) ([]MedicationRequest, error)
	GetMedication(ctx context.Context, id string) (*Medication, error)
}

type client struct {
	config      ClientConfig
	restyClient *resty.Client
}

var _ Client = &client{}

func NewClient(config ClientConfig) (Client, error) {
	if strings.TrimSpace(config.Address) == "" {
		return nil, errors.New("fhir: server address is required")
	}
	restyClient := resty.New().
		SetBaseURL(strings.TrimRight(config.Address, "/")).
		SetHeader("Accept", "application/fhir+json")
	if config.Timeout > 0 {
		restyClient.SetTimeout(config.Timeout)
	}
	return &client{
		config:      config,
		restyClient: restyClient,
	}, nil
}

func (c *client) GetPatient(ctx context.Context, id string) (*Patient, error) {
	patient := &Patient{}
	if err := c.read(ctx, "Patient", id, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (c *client) ListPatients(ctx context.Context, limit int) ([]Patient, error) {
	bundle, err := c.search(ctx, "/Patient", map[string]string{
		"_count": strconv.Itoa(limit),
	})
	if err != nil {
		return nil, err
	}
	return UnmarshalEntries[Patient](bundle)
}

func (c *client) ListObservations(ctx context.Context, patientID, code string) ([]Observation, error) {
	bundle, err := c.search(ctx, "/Observation", map[string]string{
		"patient": patientID,
		"code":    code,
		"_count":  strconv.Itoa(c.config.SearchPageSize),
	})
	if err != nil {
		return nil, err
	}
	return UnmarshalEntries[Observation](bundle)
}

func (c *client) ListActiveMedicationRequests(ctx context.Context, patientID string) ([]MedicationRequest, error) {
	bundle, err := c.search(ctx, "/MedicationRequest", map[string]string{
		"patient": patientID,
		"status":  "active",
	})
	if err != nil {
		return nil, err
	}
	return UnmarshalEntries[MedicationRequest](bundle)
}

func (c *client) GetMedication(ctx context.Context, id string) (*Medication, error) {
	medication := &Medication{}
	if err := c.read(ctx, "Medication", id, medication); err != nil {
		return nil, err
	}
	return medication, nil
}

func (c *client) read(ctx context.Context, resourceType, id string, result interface{}) error {
	outcome := &OperationOutcome{}
	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(outcome).
		SetPathParams(map[string]string{"type": resourceType, "id": id}).
		Get("/{type}/{id}")
	if err != nil {
		return fmt.Errorf("fetching %s/%s: %w", resourceType, id, err)
	}
	if resp.StatusCode() == http.StatusNotFound || resp.StatusCode() == http.StatusGone {
		return fmt.Errorf("fetching %s/%s: %w", resourceType, id, ErrNotFound)
	}
	if resp.IsError() {
		return fmt.Errorf("fetching %s/%s: %w", resourceType, id, outcome)
	}
	return nil
}

func (c *client) search(ctx context.Context, path string, params map[string]string) (*Bundle, error) {
	bundle := &Bundle{}
	outcome := &OperationOutcome{}
	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(bundle).
		SetError(outcome).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("searching %s: %w", path, outcome)
	}
	return bundle, nil
}

// OperationOutcome is the error resource FHIR servers return on failures.
type OperationOutcome struct {
	Issue []OperationOutcomeIssue `json:"issue,omitempty"`
}

type OperationOutcomeIssue struct {
	Severity    string `json:"severity,omitempty"`
	Code        string `json:"code,omitempty"`
	Diagnostics string `json:"diagnostics,omitempty"`
}

func (o OperationOutcome) Error() string {
	if len(o.Issue) == 0 {
		return "unexpected server error"
	}
	issue := o.Issue[0]
	if issue.Diagnostics != "" {
		return fmt.Sprintf("%v: %v", issue.Code, issue.Diagnostics)
	}
	return issue.Code
}
