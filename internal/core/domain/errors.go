package domain

import "errors"

// Error types shared across the purge flows.
var (
	// ErrConfirmationRequired indicates a destructive flow was started
	// without the explicit confirmation flag. Raised before any network
	// call is made.
	ErrConfirmationRequired = errors.New("domain: confirmation required for destructive run")

	// ErrOrganisationRequired indicates the organisation-scoped flow was
	// started without an organisation code.
	ErrOrganisationRequired = errors.New("domain: organisation code required")
)
