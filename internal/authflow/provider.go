package authflow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/auralytics/siteauth/pkg/session"
)

// Provider performs the identity-provider round trip: building the
// authorization URL, exchanging an authorization code for tokens, and
// resolving an access token into a user profile.
type Provider struct {
	configuration Config
	httpClient    *http.Client
}

// NewProvider constructs a Provider. A nil client falls back to
// http.DefaultClient.
func NewProvider(configuration Config, httpClient *http.Client) *Provider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Provider{
		configuration: configuration.withDefaults(),
		httpClient:    httpClient,
	}
}

// AuthCodeURL builds the provider's authorization URL. The scope and
// consent parameters are fixed by the login contract.
func (provider *Provider) AuthCodeURL() string {
	parameters := url.Values{
		"client_id":     {provider.configuration.ClientID},
		"redirect_uri":  {provider.configuration.RedirectURI},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
	}
	return provider.configuration.AuthURL + "?" + parameters.Encode()
}

// ExchangeCode trades an authorization code for the provider's token
// response. The response body is parsed structurally and returned as-is;
// no field is validated or defaulted. A non-success status is terminal
// for the attempt.
func (provider *Provider) ExchangeCode(ctx context.Context, code string) (session.TokenSet, error) {
	if strings.TrimSpace(code) == "" {
		return session.TokenSet{}, fmt.Errorf("authflow.exchange: %w", ErrEmptyCode)
	}

	form := url.Values{
		"client_id":     {provider.configuration.ClientID},
		"client_secret": {provider.configuration.ClientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {provider.configuration.RedirectURI},
	}

	request, requestErr := http.NewRequestWithContext(ctx, http.MethodPost, provider.configuration.TokenURL, strings.NewReader(form.Encode()))
	if requestErr != nil {
		return session.TokenSet{}, fmt.Errorf("authflow.exchange.request: %w", requestErr)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, doErr := provider.httpClient.Do(request)
	if doErr != nil {
		return session.TokenSet{}, fmt.Errorf("authflow.exchange.transport: %w", doErr)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return session.TokenSet{}, fmt.Errorf("authflow.exchange: %w: token exchange failed: %s", ErrExchangeFailed, statusText(response))
	}

	body, readErr := io.ReadAll(response.Body)
	if readErr != nil {
		return session.TokenSet{}, fmt.Errorf("authflow.exchange.read: %w", readErr)
	}
	var tokens session.TokenSet
	if unmarshalErr := json.Unmarshal(body, &tokens); unmarshalErr != nil {
		return session.TokenSet{}, fmt.Errorf("authflow.exchange.parse: %w", unmarshalErr)
	}
	return tokens, nil
}

// FetchUserInfo resolves an access token into the provider's profile
// record. Fields are mapped verbatim; a missing field stays empty.
func (provider *Provider) FetchUserInfo(ctx context.Context, accessToken string) (session.Profile, error) {
	request, requestErr := http.NewRequestWithContext(ctx, http.MethodGet, provider.configuration.UserInfoURL, nil)
	if requestErr != nil {
		return session.Profile{}, fmt.Errorf("authflow.userinfo.request: %w", requestErr)
	}
	request.Header.Set("Authorization", "Bearer "+accessToken)

	response, doErr := provider.httpClient.Do(request)
	if doErr != nil {
		return session.Profile{}, fmt.Errorf("authflow.userinfo.transport: %w", doErr)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return session.Profile{}, fmt.Errorf("authflow.userinfo: %w: failed to fetch user info: %s", ErrProfileFetchFailed, statusText(response))
	}

	body, readErr := io.ReadAll(response.Body)
	if readErr != nil {
		return session.Profile{}, fmt.Errorf("authflow.userinfo.read: %w", readErr)
	}
	var profile session.Profile
	if unmarshalErr := json.Unmarshal(body, &profile); unmarshalErr != nil {
		return session.Profile{}, fmt.Errorf("authflow.userinfo.parse: %w", unmarshalErr)
	}
	return profile, nil
}

func statusText(response *http.Response) string {
	if response.Status != "" {
		return response.Status
	}
	return http.StatusText(response.StatusCode)
}
