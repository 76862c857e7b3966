// ABOUTME: Typed errors surfaced by repositories to the cache layer
// ABOUTME: Separates validation, not-found, and remote store failures
package repository

import (
	"errors"
	"fmt"

	"github.com/harperreed/rapport/db"
	"github.com/harperreed/rapport/models"
)

// ValidationError is returned before any gateway call is attempted.
type ValidationError = models.ValidationError

// NotFoundError reports an id the gateway says does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// RemoteError wraps any other gateway failure. The cache layer only checks
// for its presence; Unwrap exposes the cause unchanged.
type RemoteError struct {
	Op    string
	Table string
	Err   error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// classify turns a gateway error into NotFoundError or RemoteError.
func classify(op, table, entity, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, db.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return &RemoteError{Op: op, Table: table, Err: err}
}
