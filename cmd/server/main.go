package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/auralytics/siteauth/internal/authflow"
	"github.com/auralytics/siteauth/internal/directory"
	"github.com/auralytics/siteauth/internal/web"
	"github.com/auralytics/siteauth/pkg/session"
	webassets "github.com/auralytics/siteauth/web"
)

var serveHTTP = func(server *http.Server) error {
	return server.ListenAndServe()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "siteauth",
		Short:   "Marketing site server with Google OAuth login, a browser-owned session, and a last-login directory",
		PreRunE: prepareServerConfig,
		RunE:    runServer,
	}

	rootCmd.Flags().String("listen_addr", ":8080", "HTTP listen address")
	rootCmd.Flags().String("google_client_id", "", "Google OAuth client ID")
	rootCmd.Flags().String("google_client_secret", "", "Google OAuth client secret")
	rootCmd.Flags().String("google_redirect_uri", "", "OAuth redirect URI registered with Google")
	rootCmd.Flags().String("database_url", "", "Database URL for the user directory (postgres:// or sqlite://; leave empty for in-memory store)")
	rootCmd.Flags().Bool("enable_cors", false, "Enable CORS for cross-origin clients")
	rootCmd.Flags().StringSlice("cors_allowed_origins", []string{}, "Allowed origins when CORS is enabled (required if enable_cors is true)")

	_ = viper.BindPFlag("listen_addr", rootCmd.Flags().Lookup("listen_addr"))
	_ = viper.BindPFlag("google_client_id", rootCmd.Flags().Lookup("google_client_id"))
	_ = viper.BindPFlag("google_client_secret", rootCmd.Flags().Lookup("google_client_secret"))
	_ = viper.BindPFlag("google_redirect_uri", rootCmd.Flags().Lookup("google_redirect_uri"))
	_ = viper.BindPFlag("database_url", rootCmd.Flags().Lookup("database_url"))
	_ = viper.BindPFlag("enable_cors", rootCmd.Flags().Lookup("enable_cors"))
	_ = viper.BindPFlag("cors_allowed_origins", rootCmd.Flags().Lookup("cors_allowed_origins"))

	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()

	return rootCmd
}

const (
	configCodeMissingListenAddr       = "config.missing_listen_addr"
	configCodeUninitializedServerConf = "config.uninitialized_server_config"
)

type contextKey string

const serverConfigContextKey contextKey = "serverConfig"

type serverConfig struct {
	ListenAddr         string
	Google             authflow.Config
	DatabaseURL        string
	EnableCORS         bool
	CORSAllowedOrigins []string
}

func prepareServerConfig(command *cobra.Command, arguments []string) error {
	loadedConfig, loadErr := loadServerConfig()
	if loadErr != nil {
		return loadErr
	}
	existingContext := command.Context()
	if existingContext == nil {
		existingContext = context.Background()
	}
	command.SetContext(context.WithValue(existingContext, serverConfigContextKey, loadedConfig))
	return nil
}

func configError(code, message string) error {
	return fmt.Errorf("%s: %s", code, message)
}

// loadServerConfig reads flags and environment. Missing Google
// credentials are deliberately not an error: the exchange runs with
// empty strings and the provider rejection surfaces through the
// callback's error redirect.
func loadServerConfig() (serverConfig, error) {
	listenAddr := viper.GetString("listen_addr")
	if listenAddr == "" {
		return serverConfig{}, configError(configCodeMissingListenAddr, "listen_addr must be provided")
	}

	return serverConfig{
		ListenAddr: listenAddr,
		Google: authflow.Config{
			ClientID:     viper.GetString("google_client_id"),
			ClientSecret: viper.GetString("google_client_secret"),
			RedirectURI:  viper.GetString("google_redirect_uri"),
		},
		DatabaseURL:        viper.GetString("database_url"),
		EnableCORS:         viper.GetBool("enable_cors"),
		CORSAllowedOrigins: viper.GetStringSlice("cors_allowed_origins"),
	}, nil
}

func runServer(command *cobra.Command, arguments []string) error {
	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return loggerErr
	}
	defer func() { _ = logger.Sync() }()

	commandContext := command.Context()
	var contextValue any
	if commandContext != nil {
		contextValue = commandContext.Value(serverConfigContextKey)
	}
	loadedConfig, ok := contextValue.(serverConfig)
	if !ok {
		return configError(configCodeUninitializedServerConf, "server configuration not prepared; PreRunE must execute before RunE")
	}

	if loadedConfig.Google.ClientID == "" || loadedConfig.Google.ClientSecret == "" {
		logger.Warn("google credentials not configured; logins will fail at the provider",
			zap.String("code", "config.missing_google_credentials"))
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(zapLoggerMiddleware(logger))

	if loadedConfig.EnableCORS {
		corsMiddleware, corsErr := web.ConfigureCORS(logger, loadedConfig.CORSAllowedOrigins)
		if corsErr != nil {
			return corsErr
		}
		router.Use(corsMiddleware)
	}

	provider := authflow.NewProvider(loadedConfig.Google, nil)
	clock := session.SystemClock()
	metrics := authflow.NewCounterMetrics()

	var directoryStore directory.Store
	if loadedConfig.DatabaseURL != "" {
		persistentStore, storeErr := directory.NewDatabaseStore(context.Background(), loadedConfig.DatabaseURL)
		if storeErr != nil {
			return storeErr
		}
		directoryStore = persistentStore
		logger.Info("using persistent directory store", zap.String("driver", persistentStore.Driver()))
	} else {
		directoryStore = directory.NewMemoryStore()
		logger.Info("using in-memory directory store")
	}

	authflow.MountCallbackRoute(router, provider, clock, logger, metrics)
	directory.MountUserRoutes(router, directoryStore, clock, logger)

	router.GET("/", func(contextGin *gin.Context) {
		web.ServeIndex(contextGin, webassets.FS, "index.html")
	})
	router.GET("/static/auth-client.js", func(contextGin *gin.Context) {
		web.ServeEmbeddedAsset(contextGin, webassets.FS, "auth-client.js", "application/javascript; charset=utf-8")
	})
	router.GET("/config.js", func(contextGin *gin.Context) {
		web.ServeClientConfig(contextGin, web.ClientConfig{
			LoginURL:     provider.AuthCodeURL(),
			StorageKey:   session.StorageKey,
			DirectoryURL: directory.UserPath,
		})
	})

	server := &http.Server{
		Addr:              loadedConfig.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	defer shutdownCancel()

	go func() {
		stopSignals := make(chan os.Signal, 1)
		signal.Notify(stopSignals, syscall.SIGINT, syscall.SIGTERM)
		<-stopSignals
		graceCtx, graceCancel := context.WithTimeout(shutdownCtx, 10*time.Second)
		defer graceCancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", loadedConfig.ListenAddr))
	if err := serveHTTP(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen error: %w", err)
	}
	return nil
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		startTime := time.Now()
		contextGin.Next()
		duration := time.Since(startTime)
		logger.Info("http",
			zap.String("method", contextGin.Request.Method),
			zap.String("path", contextGin.Request.URL.Path),
			zap.Int("status", contextGin.Writer.Status()),
			zap.String("ip", contextGin.ClientIP()),
			zap.Duration("elapsed", duration),
		)
	}
}
