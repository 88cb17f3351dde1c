package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ClientConfig contains dynamic values exposed to the browser client.
type ClientConfig struct {
	LoginURL     string
	StorageKey   string
	DirectoryURL string
}

// ServeClientConfig emits a JavaScript payload that hydrates
// window.__SITEAUTH_CONFIG for auth-client.js.
func ServeClientConfig(contextGin *gin.Context, configuration ClientConfig) {
	payload := struct {
		LoginURL     string `json:"loginUrl"`
		StorageKey   string `json:"storageKey"`
		DirectoryURL string `json:"directoryUrl"`
	}{
		LoginURL:     configuration.LoginURL,
		StorageKey:   configuration.StorageKey,
		DirectoryURL: configuration.DirectoryURL,
	}

	encoded, encodeErr := json.Marshal(payload)
	if encodeErr != nil {
		contextGin.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "web.client_config.encode_failed",
		})
		return
	}

	script := fmt.Sprintf("window.__SITEAUTH_CONFIG=Object.freeze(%s);", string(encoded))

	contextGin.Header("Content-Type", "application/javascript; charset=utf-8")
	contextGin.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
	contextGin.Header("Pragma", "no-cache")
	contextGin.Header("X-Content-Type-Options", "nosniff")
	contextGin.String(http.StatusOK, script)
}
