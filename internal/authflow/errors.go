package authflow

import "errors"

var (
	// ErrExchangeFailed indicates the token endpoint answered with a
	// non-success status. Authorization codes are single use; the login
	// attempt is over.
	ErrExchangeFailed = errors.New("authflow.exchange.non_2xx")
	// ErrProfileFetchFailed indicates the user-info endpoint answered
	// with a non-success status.
	ErrProfileFetchFailed = errors.New("authflow.userinfo.non_2xx")
	// ErrEmptyCode indicates an exchange was attempted without an
	// authorization code.
	ErrEmptyCode = errors.New("authflow.exchange.empty_code")
)
