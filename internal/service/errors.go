package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shinyyama/home-inventory/internal/model"
	"github.com/shinyyama/home-inventory/internal/storage"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrMissingImage = errors.New("an image file is required")
)

type ValidationError = model.ValidationError

// PersistenceError reports a failed repository write. Blobs uploaded for the
// operation have already been rolled back when it is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// CleanupError is returned with the deleted item when some of its blobs
// could not be removed. The record is gone either way.
type CleanupError struct {
	ItemID string
	Failed []*storage.DeleteError
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("item %s deleted but %d blob(s) remain: %s", e.ItemID, len(e.Failed), strings.Join(e.Keys(), ", "))
}

func (e *CleanupError) Keys() []string {
	keys := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		keys = append(keys, f.Key)
	}
	return keys
}

func (e *CleanupError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f)
	}
	return errs
}
