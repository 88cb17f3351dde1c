package directory

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auralytics/siteauth/pkg/session"
)

// UserPath is the directory endpoint consumed by the browser client.
const UserPath = "/api/auth/user"

type upsertRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	GoogleID string `json:"googleId"`
}

// MountUserRoutes registers the single-record directory endpoints:
// POST upserts the last-login record, GET returns it with a login flag,
// DELETE clears it.
func MountUserRoutes(router gin.IRouter, store Store, clock session.Clock, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = session.SystemClock()
	}

	router.POST(UserPath, func(contextGin *gin.Context) {
		var inbound upsertRequest
		if bindErr := contextGin.ShouldBindJSON(&inbound); bindErr != nil {
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "Missing required fields: email, name, googleId",
			})
			return
		}
		if inbound.Email == "" || inbound.Name == "" || inbound.GoogleID == "" {
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "Missing required fields: email, name, googleId",
			})
			return
		}

		now := clock.Now()
		record := Record{
			ID:        uuid.NewString(),
			Email:     inbound.Email,
			Name:      inbound.Name,
			Picture:   inbound.Picture,
			GoogleID:  inbound.GoogleID,
			LoginTime: now,
		}
		if putErr := store.Put(contextGin.Request.Context(), CurrentUserKey, record); putErr != nil {
			logger.Error("directory upsert failed",
				zap.String("code", "directory.upsert.store_error"),
				zap.Error(putErr))
			contextGin.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			return
		}

		logger.Info("login recorded",
			zap.String("code", "directory.upsert.success"),
			zap.String("google_id", record.GoogleID))
		contextGin.JSON(http.StatusOK, gin.H{
			"message":   "User login processed successfully",
			"user":      record,
			"timestamp": now.UTC().Format(time.RFC3339),
		})
	})

	router.GET(UserPath, func(contextGin *gin.Context) {
		record, ok, getErr := store.Get(contextGin.Request.Context(), CurrentUserKey)
		if getErr != nil {
			logger.Error("directory lookup failed",
				zap.String("code", "directory.get.store_error"),
				zap.Error(getErr))
			contextGin.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			return
		}
		if !ok {
			contextGin.JSON(http.StatusOK, gin.H{
				"currentUser": nil,
				"isLoggedIn":  false,
			})
			return
		}
		contextGin.JSON(http.StatusOK, gin.H{
			"currentUser": record,
			"isLoggedIn":  true,
			"loginTime":   record.LoginTime,
		})
	})

	router.DELETE(UserPath, func(contextGin *gin.Context) {
		if deleteErr := store.Delete(contextGin.Request.Context(), CurrentUserKey); deleteErr != nil {
			logger.Error("directory clear failed",
				zap.String("code", "directory.delete.store_error"),
				zap.Error(deleteErr))
			contextGin.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			return
		}
		contextGin.JSON(http.StatusOK, gin.H{
			"message": "User logged out successfully",
		})
	})
}
