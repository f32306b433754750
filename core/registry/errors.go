package registry

import (
	"errors"
	"fmt"

	"github.com/modelvault/modelvault/core/model"
)

// Error kinds returned to callers. Typed errors below wrap these so callers
// can branch with errors.Is and still read the detail.
var (
	ErrAuthorization   = errors.New("authorization error")
	ErrStateTransition = errors.New("state transition error")
	ErrIntegrity       = errors.New("integrity error")
	ErrCapacity        = errors.New("capacity error")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrConcurrency     = errors.New("concurrency error")
)

type AuthorizationError struct {
	Actor  string
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization error: %s: %s", e.Actor, e.Reason)
}

func (e *AuthorizationError) Unwrap() error { return ErrAuthorization }

type StateTransitionError struct {
	ModelID model.ModelID
	From    model.Status
	To      model.Status
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("state transition error: model %s: no edge %s -> %s", e.ModelID, e.From, e.To)
}

func (e *StateTransitionError) Unwrap() error { return ErrStateTransition }

type IntegrityError struct {
	ModelID model.ModelID
	ShardID string
	Reason  string
}

func (e *IntegrityError) Error() string {
	if e.ShardID == "" {
		return fmt.Sprintf("integrity error: model %s: %s", e.ModelID, e.Reason)
	}

	return fmt.Sprintf("integrity error: model %s shard %s: %s", e.ModelID, e.ShardID, e.Reason)
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }

type CapacityError struct {
	ModelID model.ModelID
	ShardID string
	Size    int64
	Limit   int64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity error: model %s shard %s: %d bytes exceeds %d byte ceiling",
		e.ModelID, e.ShardID, e.Size, e.Limit)
}

func (e *CapacityError) Unwrap() error { return ErrCapacity }

type NotFoundError struct {
	Kind string // "model", "shard", "manifest"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type ValidationError struct {
	ModelID model.ModelID
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: model %s: %s", e.ModelID, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type ConcurrencyError struct {
	ModelID model.ModelID
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("concurrency error: model %s has an activation in flight", e.ModelID)
}

func (e *ConcurrencyError) Unwrap() error { return ErrConcurrency }
