package domain

import "errors"

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrInvalidKind     = errors.New("invalid event kind")
	ErrInvalidStatus   = errors.New("invalid attendance status")
	ErrInvalidMemberID = errors.New("invalid member id")
	ErrInvalidFilter   = errors.New("invalid archive filter")
	ErrBulkUnsupported = errors.New("bulk creation not supported for this event kind")
	ErrInvalidWeeks    = errors.New("number of weeks must be between 0 and 52")
	ErrNotOrderable    = errors.New("event kind has no manual order")
	ErrUnknownField    = errors.New("unknown field")
	ErrReadOnlyField   = errors.New("field cannot be updated")
)
