package sync

import "errors"

var (
	ErrBatchTooLarge        = errors.New("sync batch too large")
	ErrUnknownEntityType    = errors.New("unknown entity type")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrMissingBaseline      = errors.New("version and updated_at are required")
	ErrEntityMissing        = errors.New("entity does not exist")
	ErrInvalidChange        = errors.New("invalid change")
)
