package authclient

import (
	"context"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/auralytics/siteauth/pkg/session"
)

// State is the controller's authentication state.
type State int

const (
	// StateInitializing holds until Initialize has run.
	StateInitializing State = iota
	// StateUnauthenticated means no valid session is known.
	StateUnauthenticated
	// StateAuthenticated means a valid session is loaded.
	StateAuthenticated
)

// String renders the state for logs.
func (state State) String() string {
	switch state {
	case StateInitializing:
		return "initializing"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// AuthURLSource yields the identity provider's authorization URL.
type AuthURLSource interface {
	AuthCodeURL() string
}

// Controller reconciles the stored session and the inbound callback
// payload on mount, and exposes login/logout to the UI.
type Controller struct {
	platform  Platform
	authURLs  AuthURLSource
	directory Directory
	clock     session.Clock
	logger    *zap.Logger

	mutex      sync.Mutex
	state      State
	current    session.Session
	upsertDone chan struct{}
}

// NewController wires the controller's collaborators. The directory may
// be nil, in which case login bookkeeping is skipped.
func NewController(platform Platform, authURLs AuthURLSource, dir Directory, clock session.Clock, logger *zap.Logger) *Controller {
	if clock == nil {
		clock = session.SystemClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	done := make(chan struct{})
	close(done)
	return &Controller{
		platform:   platform,
		authURLs:   authURLs,
		directory:  dir,
		clock:      clock,
		logger:     logger,
		state:      StateInitializing,
		upsertDone: done,
	}
}

// Initialize runs the mount-time reconciliation: first the stored
// session, then the callback payload in the current URL. Both checks run
// once; a session decoded from the URL overwrites the stored one (last
// write wins, idempotent when both carry the same account).
func (controller *Controller) Initialize(ctx context.Context) {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()

	controller.state = StateUnauthenticated

	if stored, ok := session.ReadStored(controller.platform.Storage(), controller.clock); ok {
		controller.state = StateAuthenticated
		controller.current = stored
	}

	controller.handleCallbackLocked(ctx)
}

func (controller *Controller) handleCallbackLocked(ctx context.Context) {
	location, urlErr := controller.platform.CurrentURL()
	if urlErr != nil || location == nil {
		controller.logger.Warn("current URL unavailable",
			zap.String("code", "authclient.init.current_url"),
			zap.Error(urlErr))
		return
	}
	query := location.Query()

	if query.Get("auth_success") == "true" && query.Get("session") != "" {
		inbound, decodeErr := session.Decode(query.Get("session"))
		if decodeErr != nil {
			controller.logger.Error("callback session payload rejected",
				zap.String("code", "authclient.init.decode_failed"),
				zap.Error(decodeErr))
			return
		}
		if writeErr := session.WriteStored(controller.platform.Storage(), inbound); writeErr != nil {
			controller.logger.Error("session persistence failed",
				zap.String("code", "authclient.init.store_failed"),
				zap.Error(writeErr))
		}
		controller.state = StateAuthenticated
		controller.current = inbound
		controller.startDirectoryUpsertLocked(ctx, inbound.User)
		controller.platform.RewriteURL(cleanLocation(location))
		return
	}

	if callbackError := query.Get("error"); callbackError != "" {
		controller.logger.Warn("login callback reported an error",
			zap.String("code", "authclient.init.callback_error"),
			zap.String("error", callbackError))
		controller.platform.RewriteURL(cleanLocation(location))
	}
}

// startDirectoryUpsertLocked records the login server-side as a
// detached task. Failures are logged and never surface to the UI; a
// stale directory record is tolerated because the directory is
// diagnostic, not authoritative.
func (controller *Controller) startDirectoryUpsertLocked(ctx context.Context, profile session.Profile) {
	if controller.directory == nil {
		return
	}
	done := make(chan struct{})
	controller.upsertDone = done
	go func() {
		defer close(done)
		if upsertErr := controller.directory.Upsert(ctx, profile); upsertErr != nil {
			controller.logger.Error("directory upsert failed",
				zap.String("code", "authclient.directory.upsert_failed"),
				zap.Error(upsertErr))
		}
	}()
}

// DirectorySync reports completion of the most recent detached
// directory upsert. It is closed immediately when none was started.
func (controller *Controller) DirectorySync() <-chan struct{} {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.upsertDone
}

// Login navigates to the identity provider's authorization URL. This is
// a full-page navigation, not an awaited call; there is nothing to
// return and nothing to cancel.
func (controller *Controller) Login() {
	controller.platform.Navigate(controller.authURLs.AuthCodeURL())
}

// Logout clears the server-side directory record best-effort, drops the
// stored session, and reloads the page.
func (controller *Controller) Logout(ctx context.Context) {
	if controller.directory != nil {
		if clearErr := controller.directory.Clear(ctx); clearErr != nil {
			controller.logger.Error("directory clear failed",
				zap.String("code", "authclient.directory.clear_failed"),
				zap.Error(clearErr))
		}
	}

	controller.mutex.Lock()
	controller.platform.Storage().Clear()
	controller.state = StateUnauthenticated
	controller.current = session.Session{}
	controller.mutex.Unlock()

	controller.platform.Reload()
}

// CurrentState returns the controller state.
func (controller *Controller) CurrentState() State {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.state
}

// CurrentUser returns the authenticated profile, if any.
func (controller *Controller) CurrentUser() (session.Profile, bool) {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	if controller.state != StateAuthenticated {
		return session.Profile{}, false
	}
	return controller.current.User, true
}

// RefreshSession re-reads the stored session, dropping to
// unauthenticated when it is gone or expired.
func (controller *Controller) RefreshSession() {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	stored, ok := session.ReadStored(controller.platform.Storage(), controller.clock)
	if !ok {
		controller.state = StateUnauthenticated
		controller.current = session.Session{}
		return
	}
	controller.state = StateAuthenticated
	controller.current = stored
}

func cleanLocation(location *url.URL) string {
	clean := *location
	clean.RawQuery = ""
	clean.Fragment = ""
	return clean.String()
}
