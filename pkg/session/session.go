// Package session defines the browser-owned authentication session and
// its transport codec. A session bundles the provider-issued user
// profile and token set with an absolute expiry; it travels as a
// percent-encoded JSON value inside a redirect query parameter and is
// persisted verbatim in a single client-storage slot.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// StorageKey names the client-storage slot holding the serialized session.
const StorageKey = "google_auth_session"

// Sentinel errors exposed by the codec.
var (
	ErrMalformedPayload = errors.New("session.codec.malformed_payload")
	ErrEmptyPayload     = errors.New("session.codec.empty_payload")
)

// Profile is the identity-provider-issued user record. Fields are
// mapped verbatim from the provider's user-info response; a field the
// provider omits stays empty.
type Profile struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Picture    string `json:"picture"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// TokenSet is the provider's token response, kept opaque except for
// ExpiresIn. The ID token is never decoded or validated here.
type TokenSet struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope"`
	IDToken     string `json:"id_token,omitempty"`
}

// Session is the browser-owned bundle of profile, tokens, and expiry.
// ExpiresAt is an absolute Unix-millisecond timestamp.
type Session struct {
	User      Profile  `json:"user"`
	Tokens    TokenSet `json:"tokens"`
	ExpiresAt int64    `json:"expiresAt"`
}

// New builds a session expiring ExpiresIn seconds after now.
func New(user Profile, tokens TokenSet, now time.Time) Session {
	return Session{
		User:      user,
		Tokens:    tokens,
		ExpiresAt: now.UnixMilli() + tokens.ExpiresIn*1000,
	}
}

// ExpiresTime returns the expiry as a time.Time.
func (current Session) ExpiresTime() time.Time {
	return time.UnixMilli(current.ExpiresAt)
}

// Expired reports whether the session has lapsed. Expiry is inclusive:
// a session whose ExpiresAt equals now is already expired.
func (current Session) Expired(now time.Time) bool {
	return current.ExpiresAt <= now.UnixMilli()
}

// Encode serializes the session to the wire form carried in the
// callback redirect: JSON, percent-encoded once. The query serializer
// escapes the value a second time, so decoding unescapes once after
// query parsing.
func Encode(current Session) (string, error) {
	payload, marshalErr := json.Marshal(current)
	if marshalErr != nil {
		return "", fmt.Errorf("session.codec.encode: %w", marshalErr)
	}
	return url.QueryEscape(string(payload)), nil
}

// Decode reverses Encode given a query-parameter value that has already
// been decoded once by query parsing.
func Decode(encoded string) (Session, error) {
	if encoded == "" {
		return Session{}, fmt.Errorf("session.codec.decode: %w", ErrEmptyPayload)
	}
	unescaped, unescapeErr := url.QueryUnescape(encoded)
	if unescapeErr != nil {
		return Session{}, fmt.Errorf("session.codec.decode: %w: %v", ErrMalformedPayload, unescapeErr)
	}
	var decoded Session
	if unmarshalErr := json.Unmarshal([]byte(unescaped), &decoded); unmarshalErr != nil {
		return Session{}, fmt.Errorf("session.codec.decode: %w: %v", ErrMalformedPayload, unmarshalErr)
	}
	return decoded, nil
}
