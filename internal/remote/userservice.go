package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"orgmanagement_backend/platform/config"
	"orgmanagement_backend/platform/logger"

	"github.com/google/uuid"
)

// UserServiceClient talks to the user-service over HTTP.
type UserServiceClient struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     *logger.Logger
}

// NewUserServiceClient creates a client from the remote-services config.
func NewUserServiceClient(cfg config.RemoteServicesConfig, log *logger.Logger) *UserServiceClient {
	return &UserServiceClient{
		baseURL: strings.TrimRight(cfg.GetUserServiceURL(), "/"),
		timeout: cfg.GetProbeTimeout(),
		http:    &http.Client{},
		log:     log,
	}
}

// UserExists probes the user-service for the given user ID.
func (c *UserServiceClient) UserExists(ctx context.Context, userID uuid.UUID) ProbeResult {
	url := fmt.Sprintf("%s/api/users/%s/exists", c.baseURL, userID)
	return probeExists(ctx, c.http, c.timeout, c.log, "user-service", url)
}

// AssignUser dispatches an assignment record to the user-service. The path
// suffix follows the placement kind: assign-to-department or assign-to-team.
func (c *UserServiceClient) AssignUser(ctx context.Context, userID uuid.UUID, rec Assignment) error {
	url := fmt.Sprintf("%s/api/users/%s/assign-to-%s", c.baseURL, userID, kindSuffix(rec.Kind))
	return c.dispatch(ctx, http.MethodPost, url, rec)
}

// RemoveUser dispatches a removal record to the user-service.
func (c *UserServiceClient) RemoveUser(ctx context.Context, userID uuid.UUID, rec Assignment) error {
	url := fmt.Sprintf("%s/api/users/%s/remove-from-%s", c.baseURL, userID, kindSuffix(rec.Kind))
	return c.dispatch(ctx, http.MethodDelete, url, rec)
}

func (c *UserServiceClient) dispatch(ctx context.Context, method, url string, rec Assignment) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal assignment record: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.RemoteCall("user-service", method+" "+url, err)
		return fmt.Errorf("user-service request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("user-service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		c.log.RemoteCall("user-service", method+" "+url, err)
		return err
	}

	c.log.RemoteCall("user-service", method+" "+url, nil)
	return nil
}

func kindSuffix(kind AssignmentKind) string {
	if kind == AssignmentTeam {
		return "team"
	}
	return "department"
}
