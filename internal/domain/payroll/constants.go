package payroll

const (
	StatusDraft    = "Draft"
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusPaid     = "Paid"
	StatusRejected = "Rejected"
)

var Statuses = []string{StatusDraft, StatusPending, StatusApproved, StatusPaid, StatusRejected}

// Locked reports whether the record's monetary fields and pay period
// are immutable.
func Locked(status string) bool {
	return status == StatusApproved || status == StatusPaid
}

func ValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}
