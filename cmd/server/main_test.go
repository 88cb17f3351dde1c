package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func TestZapLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	logger, err := zap.NewProduction()
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	router := gin.New()
	router.Use(zapLoggerMiddleware(logger))
	router.GET("/ping", func(contextGin *gin.Context) {
		contextGin.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", recorder.Code)
	}
}

func TestRunServerMissingConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)

	viper.Reset()
	defer viper.Reset()

	err := runServer(&cobra.Command{}, nil)
	if err == nil {
		t.Fatalf("expected configuration error")
	}

	expectedMessage := "config.uninitialized_server_config: server configuration not prepared; PreRunE must execute before RunE"
	if err.Error() != expectedMessage {
		t.Fatalf("expected error %q, got %q", expectedMessage, err.Error())
	}
}

func TestLoadServerConfigRequiresListenAddr(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	if _, err := loadServerConfig(); err == nil {
		t.Fatalf("expected error for missing listen_addr")
	}
}

func TestLoadServerConfigAllowsMissingGoogleCredentials(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("listen_addr", ":8080")

	loadedConfig, err := loadServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loadedConfig.Google.ClientID != "" || loadedConfig.Google.ClientSecret != "" {
		t.Fatalf("expected empty credentials, got %+v", loadedConfig.Google)
	}
}

func TestLoadServerConfigReadsGoogleSettings(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("listen_addr", ":9090")
	viper.Set("google_client_id", "client-1")
	viper.Set("google_client_secret", "secret-1")
	viper.Set("google_redirect_uri", "https://app.example.com/api/auth/callback/google")
	viper.Set("database_url", "sqlite://file::memory:?cache=shared")

	loadedConfig, err := loadServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loadedConfig.ListenAddr != ":9090" {
		t.Fatalf("unexpected listen addr: %s", loadedConfig.ListenAddr)
	}
	if loadedConfig.Google.ClientID != "client-1" || loadedConfig.Google.ClientSecret != "secret-1" {
		t.Fatalf("unexpected google config: %+v", loadedConfig.Google)
	}
	if loadedConfig.Google.RedirectURI != "https://app.example.com/api/auth/callback/google" {
		t.Fatalf("unexpected redirect uri: %s", loadedConfig.Google.RedirectURI)
	}
	if loadedConfig.DatabaseURL != "sqlite://file::memory:?cache=shared" {
		t.Fatalf("unexpected database url: %s", loadedConfig.DatabaseURL)
	}
}
