package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"orgmanagement_backend/platform/config"
	"orgmanagement_backend/platform/logger"

	"github.com/google/uuid"
)

// SurveyServiceClient talks to the survey-service over HTTP.
type SurveyServiceClient struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     *logger.Logger
}

// NewSurveyServiceClient creates a client from the remote-services config.
func NewSurveyServiceClient(cfg config.RemoteServicesConfig, log *logger.Logger) *SurveyServiceClient {
	return &SurveyServiceClient{
		baseURL: strings.TrimRight(cfg.GetSurveyServiceURL(), "/"),
		timeout: cfg.GetProbeTimeout(),
		http:    &http.Client{},
		log:     log,
	}
}

// SurveyExists probes the survey-service for the given survey ID.
func (c *SurveyServiceClient) SurveyExists(ctx context.Context, surveyID uuid.UUID) ProbeResult {
	url := fmt.Sprintf("%s/api/surveys/%s/exists", c.baseURL, surveyID)
	return probeExists(ctx, c.http, c.timeout, c.log, "survey-service", url)
}

// probeExists issues a GET-exists call and folds every transport failure
// into ProbeUnknown. The body is a bare JSON boolean.
func probeExists(ctx context.Context, client *http.Client, timeout time.Duration, log *logger.Logger, service, url string) ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ProbeUnknown
	}

	resp, err := client.Do(req)
	if err != nil {
		log.RemoteCall(service, "GET "+url, err)
		return ProbeUnknown
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		log.RemoteCall(service, "GET "+url, fmt.Errorf("status %d", resp.StatusCode))
		return ProbeUnknown
	}

	var exists bool
	if err := json.NewDecoder(resp.Body).Decode(&exists); err != nil {
		log.RemoteCall(service, "GET "+url, err)
		return ProbeUnknown
	}

	log.RemoteCall(service, "GET "+url, nil)
	if exists {
		return ProbePresent
	}
	return ProbeAbsent
}
