package authflow

const (
	defaultAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenURL    = "https://oauth2.googleapis.com/token"
	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// Config configures the identity-provider round trip. Endpoint URLs
// default to Google's and are overridable for tests. Empty credentials
// are allowed: the provider rejects the exchange and the failure
// surfaces through the callback's error redirect.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
}

func (configuration Config) withDefaults() Config {
	if configuration.AuthURL == "" {
		configuration.AuthURL = defaultAuthURL
	}
	if configuration.TokenURL == "" {
		configuration.TokenURL = defaultTokenURL
	}
	if configuration.UserInfoURL == "" {
		configuration.UserInfoURL = defaultUserInfoURL
	}
	return configuration
}
