package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest indicates a malformed request payload.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrTabNotFound indicates a requested list could not be found.
	ErrTabNotFound = errors.New("list not found")
	// ErrItemNotFound indicates a requested item could not be found.
	ErrItemNotFound = errors.New("item not found")
	// ErrLastTab indicates the only remaining list cannot be removed.
	ErrLastTab = errors.New("cannot remove the last list")
	// ErrLastItem indicates the only remaining item cannot be removed.
	ErrLastItem = errors.New("cannot remove the last item")
	// ErrInvalidPickCount indicates the pick count is not a positive integer.
	ErrInvalidPickCount = errors.New("pick count must be a positive whole number")
	// ErrConfirmationRequired indicates a destructive action needs confirmation.
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrEmptyCollection indicates a collection without any lists.
	ErrEmptyCollection = errors.New("no lists")
	// ErrInvalidConfig indicates the service configuration is invalid.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrStorageRead indicates the stored lists could not be read.
	ErrStorageRead = errors.New("error when getting the data")
	// ErrStorageWrite indicates the lists could not be saved.
	ErrStorageWrite = errors.New("error when saving the data")
	// ErrNoticesPending indicates a change was refused until pending notices
	// are acknowledged.
	ErrNoticesPending = errors.New("storage notices pending")
)

// StorageOp names the store operation that failed.
type StorageOp string

const (
	// StorageOpRead is a load from the store.
	StorageOpRead StorageOp = "read"
	// StorageOpWrite is a save to the store.
	StorageOpWrite StorageOp = "write"
)

// StorageError reports a failed store operation.
type StorageError struct {
	Op  StorageOp
	Key string
	Err error
}

func (e *StorageError) Error() string {
	prefix := ErrStorageWrite.Error()
	if e.Op == StorageOpRead {
		prefix = ErrStorageRead.Error()
	}
	if e.Err == nil {
		return fmt.Sprintf("%s (%s)", prefix, e.Key)
	}
	return fmt.Sprintf("%s (%s): %v", prefix, e.Key, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is matches ErrStorageRead or ErrStorageWrite by operation.
func (e *StorageError) Is(target error) bool {
	switch target {
	case ErrStorageRead:
		return e.Op == StorageOpRead
	case ErrStorageWrite:
		return e.Op == StorageOpWrite
	}
	return false
}
