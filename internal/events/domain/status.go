package domain

import (
	"fmt"
	"strings"
)

// Status is a member's attendance for one event.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusExcused Status = "excused"
	StatusUnknown Status = "unknown"
)

// DefaultStatus is shown for members with no stored entry.
const DefaultStatus = StatusPresent

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusExcused, StatusUnknown:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// ValidateMemberID rejects ids that cannot be used as a single segment of
// the attendance.<memberID> field path.
func ValidateMemberID(id string) error {
	if strings.TrimSpace(id) == "" || strings.ContainsAny(id, ".`/") {
		return fmt.Errorf("%w: %q", ErrInvalidMemberID, id)
	}
	return nil
}
