// Package compiler is the client for the external bot compiler/validator.
// Only its request/response contract lives here; the rules it enforces are
// its own business.
package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-botbuilder-be/pkg/flowtable/repair"
)

type Client struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type validateRequest struct {
	Artifact string `json:"artifact"`
}

// ValidateResponse is the compiler's verdict. Errors arrive in the
// tuple shape and are normalized before the repair engine sees them.
type ValidateResponse struct {
	Valid  bool            `json:"valid"`
	Errors json.RawMessage `json:"errors,omitempty"`
}

// ValidationErrors normalizes the raw error payload into the repair
// engine's uniform shape.
func (r *ValidateResponse) ValidationErrors() ([]repair.ValidationError, error) {
	if r.Valid || len(r.Errors) == 0 {
		return nil, nil
	}
	return repair.NormalizeErrors(r.Errors)
}

// Validate submits a serialized artifact and returns the structured verdict.
func (c *Client) Validate(ctx context.Context, artifact string) (*ValidateResponse, error) {
	payload, err := json.Marshal(validateRequest{Artifact: artifact})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.BaseURL + "/v1/validate"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("compiler request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("compiler error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var out ValidateResponse
	if err := json.Unmarshal(bodyBytes, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &out, nil
}
