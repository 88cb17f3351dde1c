package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/auralytics/siteauth/internal/directory"
	"github.com/auralytics/siteauth/pkg/session"
)

// Directory is the server-side last-login record as seen by the client.
type Directory interface {
	Upsert(ctx context.Context, profile session.Profile) error
	Clear(ctx context.Context) error
}

// ErrDirectoryStatus indicates the directory endpoint answered with a
// non-success status.
var ErrDirectoryStatus = errors.New("authclient.directory.non_2xx")

// HTTPDirectory talks to the directory endpoints over HTTP.
type HTTPDirectory struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPDirectory constructs a client for the directory endpoint at
// baseURL. A nil client falls back to http.DefaultClient.
func NewHTTPDirectory(baseURL string, httpClient *http.Client) *HTTPDirectory {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPDirectory{baseURL: baseURL, httpClient: httpClient}
}

// Upsert records the profile as the current user.
func (client *HTTPDirectory) Upsert(ctx context.Context, profile session.Profile) error {
	payload, marshalErr := json.Marshal(map[string]string{
		"email":    profile.Email,
		"name":     profile.Name,
		"picture":  profile.Picture,
		"googleId": profile.ID,
	})
	if marshalErr != nil {
		return fmt.Errorf("authclient.directory.upsert.encode: %w", marshalErr)
	}

	request, requestErr := http.NewRequestWithContext(ctx, http.MethodPost, client.baseURL+directory.UserPath, bytes.NewReader(payload))
	if requestErr != nil {
		return fmt.Errorf("authclient.directory.upsert.request: %w", requestErr)
	}
	request.Header.Set("Content-Type", "application/json")

	response, doErr := client.httpClient.Do(request)
	if doErr != nil {
		return fmt.Errorf("authclient.directory.upsert.transport: %w", doErr)
	}
	defer func() { _ = response.Body.Close() }()
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("authclient.directory.upsert: %w: %s", ErrDirectoryStatus, response.Status)
	}
	return nil
}

// Clear removes the current-user record.
func (client *HTTPDirectory) Clear(ctx context.Context) error {
	request, requestErr := http.NewRequestWithContext(ctx, http.MethodDelete, client.baseURL+directory.UserPath, nil)
	if requestErr != nil {
		return fmt.Errorf("authclient.directory.clear.request: %w", requestErr)
	}
	response, doErr := client.httpClient.Do(request)
	if doErr != nil {
		return fmt.Errorf("authclient.directory.clear.transport: %w", doErr)
	}
	defer func() { _ = response.Body.Close() }()
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("authclient.directory.clear: %w: %s", ErrDirectoryStatus, response.Status)
	}
	return nil
}
