package authflow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestAuthCodeURLCarriesConsentParameters(t *testing.T) {
	t.Parallel()

	provider := NewProvider(Config{
		ClientID:    "client-1",
		RedirectURI: "https://app.example.com/api/auth/callback/google",
	}, nil)

	parsed, parseErr := url.Parse(provider.AuthCodeURL())
	if parseErr != nil {
		t.Fatalf("auth URL did not parse: %v", parseErr)
	}
	if parsed.Host != "accounts.google.com" || parsed.Path != "/o/oauth2/v2/auth" {
		t.Fatalf("unexpected authorize endpoint: %s", parsed.String())
	}

	query := parsed.Query()
	expectations := map[string]string{
		"client_id":     "client-1",
		"redirect_uri":  "https://app.example.com/api/auth/callback/google",
		"response_type": "code",
		"scope":         "openid email profile",
		"access_type":   "offline",
		"prompt":        "consent",
	}
	for key, expected := range expectations {
		if actual := query.Get(key); actual != expected {
			t.Fatalf("expected %s=%q, got %q", key, expected, actual)
		}
	}
}

func TestExchangeCodePostsFormAndParsesTokens(t *testing.T) {
	t.Parallel()

	tokenServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", request.Method)
		}
		if contentType := request.Header.Get("Content-Type"); contentType != "application/x-www-form-urlencoded" {
			t.Errorf("unexpected content type: %s", contentType)
		}
		if parseErr := request.ParseForm(); parseErr != nil {
			t.Errorf("form parse error: %v", parseErr)
		}
		expectations := map[string]string{
			"client_id":     "client-1",
			"client_secret": "secret-1",
			"code":          "abc123",
			"grant_type":    "authorization_code",
			"redirect_uri":  "https://app.example.com/cb",
		}
		for key, expected := range expectations {
			if actual := request.PostFormValue(key); actual != expected {
				t.Errorf("expected form %s=%q, got %q", key, expected, actual)
			}
		}
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"access_token":"t1","token_type":"Bearer","expires_in":3600,"scope":"openid email profile","id_token":"jwt"}`))
	}))
	defer tokenServer.Close()

	provider := NewProvider(Config{
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		RedirectURI:  "https://app.example.com/cb",
		TokenURL:     tokenServer.URL,
	}, tokenServer.Client())

	tokens, exchangeErr := provider.ExchangeCode(context.Background(), "abc123")
	if exchangeErr != nil {
		t.Fatalf("exchange error: %v", exchangeErr)
	}
	if tokens.AccessToken != "t1" || tokens.TokenType != "Bearer" || tokens.ExpiresIn != 3600 {
		t.Fatalf("unexpected token set: %+v", tokens)
	}
	if tokens.Scope != "openid email profile" || tokens.IDToken != "jwt" {
		t.Fatalf("token fields not carried verbatim: %+v", tokens)
	}
}

func TestExchangeCodeNonSuccessCarriesStatusText(t *testing.T) {
	t.Parallel()

	tokenServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer tokenServer.Close()

	provider := NewProvider(Config{TokenURL: tokenServer.URL}, tokenServer.Client())

	_, exchangeErr := provider.ExchangeCode(context.Background(), "abc123")
	if !errors.Is(exchangeErr, ErrExchangeFailed) {
		t.Fatalf("expected ErrExchangeFailed, got %v", exchangeErr)
	}
	if !strings.Contains(exchangeErr.Error(), "400 Bad Request") {
		t.Fatalf("expected status text in error, got %q", exchangeErr.Error())
	}
}

func TestExchangeCodeRejectsEmptyCode(t *testing.T) {
	t.Parallel()

	provider := NewProvider(Config{}, nil)
	if _, err := provider.ExchangeCode(context.Background(), "  "); !errors.Is(err, ErrEmptyCode) {
		t.Fatalf("expected ErrEmptyCode, got %v", err)
	}
}

func TestFetchUserInfoMapsFieldsVerbatim(t *testing.T) {
	t.Parallel()

	userInfoServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if authorization := request.Header.Get("Authorization"); authorization != "Bearer t1" {
			t.Errorf("unexpected authorization header: %q", authorization)
		}
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"id":"g1","email":"a@x.com","name":"A","picture":"http://p","given_name":"A","family_name":"X"}`))
	}))
	defer userInfoServer.Close()

	provider := NewProvider(Config{UserInfoURL: userInfoServer.URL}, userInfoServer.Client())

	profile, fetchErr := provider.FetchUserInfo(context.Background(), "t1")
	if fetchErr != nil {
		t.Fatalf("fetch error: %v", fetchErr)
	}
	if profile.ID != "g1" || profile.Email != "a@x.com" || profile.Name != "A" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if profile.Picture != "http://p" || profile.GivenName != "A" || profile.FamilyName != "X" {
		t.Fatalf("profile fields not carried verbatim: %+v", profile)
	}
}

func TestFetchUserInfoLeavesMissingFieldsEmpty(t *testing.T) {
	t.Parallel()

	userInfoServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"id":"g2","email":"b@x.com","name":"B"}`))
	}))
	defer userInfoServer.Close()

	provider := NewProvider(Config{UserInfoURL: userInfoServer.URL}, userInfoServer.Client())

	profile, fetchErr := provider.FetchUserInfo(context.Background(), "t2")
	if fetchErr != nil {
		t.Fatalf("fetch error: %v", fetchErr)
	}
	if profile.Picture != "" || profile.GivenName != "" || profile.FamilyName != "" {
		t.Fatalf("missing fields must stay empty, got %+v", profile)
	}
}

func TestFetchUserInfoNonSuccessCarriesStatusText(t *testing.T) {
	t.Parallel()

	userInfoServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, "nope", http.StatusUnauthorized)
	}))
	defer userInfoServer.Close()

	provider := NewProvider(Config{UserInfoURL: userInfoServer.URL}, userInfoServer.Client())

	_, fetchErr := provider.FetchUserInfo(context.Background(), "bad")
	if !errors.Is(fetchErr, ErrProfileFetchFailed) {
		t.Fatalf("expected ErrProfileFetchFailed, got %v", fetchErr)
	}
	if !strings.Contains(fetchErr.Error(), "401 Unauthorized") {
		t.Fatalf("expected status text in error, got %q", fetchErr.Error())
	}
}
