package workflow

import (
	"errors"
)

// Common errors for workflow operations.
var (
	// ErrInvalidRequirements indicates the deployment requirements failed
	// validation. No session is created and nothing is recorded.
	ErrInvalidRequirements = errors.New("invalid requirements")

	// ErrUnknownSession indicates no session exists for the given ID.
	ErrUnknownSession = errors.New("unknown session")

	// ErrIllegalTransition indicates the target phase is not a legal
	// successor of the session's current phase.
	ErrIllegalTransition = errors.New("illegal phase transition")

	// ErrCollaboratorFailure wraps discovery/model/schema collaborator
	// failures, preserving the originating message.
	ErrCollaboratorFailure = errors.New("collaborator failure")

	// ErrMissingCredential indicates a model-dependent operation was
	// attempted without the required provider credential.
	ErrMissingCredential = errors.New("missing provider credential")

	// ErrConnectionFailed indicates the discovery collaborator could not
	// reach the cluster.
	ErrConnectionFailed = errors.New("cluster connection failed")

	// ErrNotFound indicates a requested resource kind is unknown.
	ErrNotFound = errors.New("resource not found")

	// ErrProviderUnavailable indicates the model provider is unreachable.
	ErrProviderUnavailable = errors.New("model provider unavailable")
)
