// AngelaMos | 2026
// erp.go

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nhpc-ltd/blog-api/internal/config"
)

var ErrERPUnavailable = errors.New("erp unavailable")

// EmployeeAuthenticator validates employee credentials against a directory
// the service does not own.
type EmployeeAuthenticator interface {
	Authenticate(ctx context.Context, employeeID, password string) (bool, error)
}

type ERPClient struct {
	url          string
	successField string
	client       *http.Client
}

func NewERPClient(cfg config.ERPConfig) *ERPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	field := cfg.SuccessField
	if field == "" {
		field = "success"
	}
	return &ERPClient{
		url:          cfg.URL,
		successField: field,
		client:       &http.Client{Timeout: timeout},
	}
}

type erpRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

// Authenticate reports true only for a 2xx response whose body carries the
// configured success field set to boolean true. A 4xx is a rejection; any
// transport failure or 5xx is ErrERPUnavailable.
func (c *ERPClient) Authenticate(ctx context.Context, employeeID, password string) (bool, error) {
	body, err := json.Marshal(erpRequest{User: employeeID, Password: password})
	if err != nil {
		return false, fmt.Errorf("encode erp request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build erp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrERPUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return false, fmt.Errorf("%w: status %d", ErrERPUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return false, nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return false, fmt.Errorf("%w: read body: %w", ErrERPUnavailable, err)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return false, nil
	}

	var ok bool
	if err := json.Unmarshal(payload[c.successField], &ok); err != nil {
		return false, nil
	}
	return ok, nil
}

var _ EmployeeAuthenticator = (*ERPClient)(nil)
