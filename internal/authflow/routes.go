package authflow

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/auralytics/siteauth/pkg/session"
)

// CallbackPath is the same-origin endpoint the identity provider
// redirects back to after consent.
const CallbackPath = "/api/auth/callback/google"

// Error codes carried back to the application root. Provider error
// detail never reaches the browser, only these coarse codes.
const (
	errorCodeOAuth      = "oauth_error"
	errorCodeNoCode     = "no_code"
	errorCodeAuthFailed = "auth_failed"
)

// MountCallbackRoute registers the OAuth callback endpoint. The handler
// is stateless: it exchanges the authorization code, fetches the user
// profile, and relays the resulting session to the browser inside a
// redirect query parameter. Every outcome is terminal for the attempt.
//
// The success redirect carries the full token set in the URL, which
// exposes it to browser history, referrer headers, and access logs.
// That is the compatibility contract with the existing client, kept
// deliberately; nothing server-side retains the tokens.
func MountCallbackRoute(router gin.IRouter, provider *Provider, clock session.Clock, logger *zap.Logger, metrics MetricsRecorder) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = session.SystemClock()
	}

	router.GET(CallbackPath, func(contextGin *gin.Context) {
		if providerError := contextGin.Query("error"); providerError != "" {
			logger.Warn("identity provider reported an error",
				zap.String("code", "authflow.callback.provider_error"),
				zap.String("oauth_error", providerError))
			metrics.Increment(MetricCallbackProviderError)
			redirectWithError(contextGin, errorCodeOAuth)
			return
		}

		code := contextGin.Query("code")
		if code == "" {
			logger.Warn("callback invoked without an authorization code",
				zap.String("code", "authflow.callback.missing_code"))
			metrics.Increment(MetricCallbackMissingCode)
			redirectWithError(contextGin, errorCodeNoCode)
			return
		}

		tokens, exchangeErr := provider.ExchangeCode(contextGin.Request.Context(), code)
		if exchangeErr != nil {
			logger.Error("authorization code exchange failed",
				zap.String("code", "authflow.callback.exchange_failed"),
				zap.Error(exchangeErr))
			metrics.Increment(MetricCallbackAuthFailed)
			redirectWithError(contextGin, errorCodeAuthFailed)
			return
		}

		profile, fetchErr := provider.FetchUserInfo(contextGin.Request.Context(), tokens.AccessToken)
		if fetchErr != nil {
			logger.Error("user profile fetch failed",
				zap.String("code", "authflow.callback.profile_fetch_failed"),
				zap.Error(fetchErr))
			metrics.Increment(MetricCallbackAuthFailed)
			redirectWithError(contextGin, errorCodeAuthFailed)
			return
		}

		built := session.New(profile, tokens, clock.Now())
		encoded, encodeErr := session.Encode(built)
		if encodeErr != nil {
			logger.Error("session encoding failed",
				zap.String("code", "authflow.callback.encode_failed"),
				zap.Error(encodeErr))
			metrics.Increment(MetricCallbackAuthFailed)
			redirectWithError(contextGin, errorCodeAuthFailed)
			return
		}

		logger.Info("login callback completed",
			zap.String("code", "authflow.callback.success"),
			zap.String("user_id", profile.ID))
		metrics.Increment(MetricCallbackSuccess)

		parameters := url.Values{}
		parameters.Set("auth_success", "true")
		parameters.Set("session", encoded)
		contextGin.Redirect(http.StatusTemporaryRedirect, "/?"+parameters.Encode())
	})
}

func redirectWithError(contextGin *gin.Context, errorCode string) {
	contextGin.Redirect(http.StatusTemporaryRedirect, "/?error="+errorCode)
}
