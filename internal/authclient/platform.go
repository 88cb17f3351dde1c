// Package authclient owns the browser-side authentication state. The
// controller is a state machine over a Platform capability so the mount
// logic is testable without a browser; web/auth-client.js is the same
// flow rendered for a real page.
package authclient

import (
	"net/url"

	"github.com/auralytics/siteauth/pkg/session"
)

// Platform abstracts the browser surface the controller touches:
// persistent storage, the current location, history rewriting, and
// navigation.
type Platform interface {
	// Storage returns the client-storage slot for the session.
	Storage() session.Store
	// CurrentURL returns the page's current location.
	CurrentURL() (*url.URL, error)
	// RewriteURL replaces the current history entry without navigating.
	RewriteURL(clean string)
	// Navigate performs a full-page navigation to target.
	Navigate(target string)
	// Reload reloads the current page.
	Reload()
}
