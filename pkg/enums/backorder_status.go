package enums

import "fmt"

// BackorderStatus tracks the review lifecycle of a backorder draft.
type BackorderStatus string

const (
	BackorderStatusPendingApproval BackorderStatus = "pending_approval"
	BackorderStatusApproved        BackorderStatus = "approved"
	BackorderStatusRejected        BackorderStatus = "rejected"
)

var validBackorderStatuses = []BackorderStatus{
	BackorderStatusPendingApproval,
	BackorderStatusApproved,
	BackorderStatusRejected,
}

// String implements fmt.Stringer.
func (b BackorderStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BackorderStatus.
func (b BackorderStatus) IsValid() bool {
	for _, candidate := range validBackorderStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBackorderStatus converts raw input into a BackorderStatus.
func ParseBackorderStatus(value string) (BackorderStatus, error) {
	for _, candidate := range validBackorderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid backorder status %q", value)
}
