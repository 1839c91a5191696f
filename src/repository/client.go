package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"course-client/src/schemas"
)

// Client performs the raw HTTP calls against the REST API and normalizes
// every failure into *schemas.APIError before it leaves this package.
// Credential attachment is the transport's job, not the client's.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an API client. baseURL should include the /api prefix,
// e.g. http://localhost:3000/api.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// doJSON issues a request with an optional JSON body and decodes a JSON
// response into out when out is non-nil. Statuses >= 400 are turned into
// normalized errors; transport failures become network errors.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return schemas.NewValidationError(fmt.Sprintf("cannot encode request body: %v", err))
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return schemas.NewValidationError(fmt.Sprintf("cannot build request: %v", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return schemas.NewNetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return schemas.NewNetworkError(err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return normalizeError(resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return schemas.NewServerError(fmt.Sprintf("cannot decode server response: %v", err), resp.StatusCode)
	}
	return nil
}

// normalizeError maps a failed response onto the error taxonomy, preferring
// a server-supplied message over the bare status text.
func normalizeError(status int, body []byte) *schemas.APIError {
	detail := serverDetail(body)
	if detail == "" {
		detail = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized:
		return schemas.NewAuthFailedError()
	case status == http.StatusNotFound:
		return schemas.NewNotFoundError(detail)
	case status == http.StatusConflict || schemas.HasDuplicateMarker(detail):
		return schemas.NewConflictError(detail, status)
	default:
		return schemas.NewServerError(detail, status)
	}
}

// serverDetail digs the human-readable message out of an error body. The
// backend is inconsistent: some endpoints use "message", some "error", and
// some return a bare string.
func serverDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, candidate := range []string{payload.Message, payload.Error, payload.Detail} {
			if candidate != "" {
				return candidate
			}
		}
	}

	var bare string
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare
	}
	return strings.TrimSpace(string(body))
}
