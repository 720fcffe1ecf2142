package query

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrClassificationAmbiguous marks a classifier answer outside the known
	// categories. The question is then treated as knowledge_qa.
	ErrClassificationAmbiguous = errors.New("classification ambiguous")
	// ErrEntityNotFound marks a name that is not part of the snapshot.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrInsufficientEntities marks an operation that lacks the people it needs.
	ErrInsufficientEntities = errors.New("insufficient entities")
	// ErrDataInconsistency marks a result the snapshot could not back up.
	ErrDataInconsistency = errors.New("data inconsistency")
	// ErrDownstreamFailure wraps any failing collaborator call.
	ErrDownstreamFailure = errors.New("downstream failure")
)

func downstream(collaborator string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDownstreamFailure, collaborator, err)
}

// ErrorKind returns a short label for err suitable for logs and metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrClassificationAmbiguous):
		return "classification_ambiguous"
	case errors.Is(err, ErrEntityNotFound):
		return "entity_not_found"
	case errors.Is(err, ErrInsufficientEntities):
		return "insufficient_entities"
	case errors.Is(err, ErrDataInconsistency):
		return "data_inconsistency"
	case errors.Is(err, ErrDownstreamFailure):
		return "downstream_failure"
	default:
		return "internal"
	}
}
