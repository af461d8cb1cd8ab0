package borrowing

// Action names a lifecycle operation on a borrowing.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
	ActionRenew   Action = "renew"
	ActionReturn  Action = "return"
)

var transitionMap = map[Action][]Status{
	ActionApprove: {StatusPending},
	ActionReject:  {StatusPending},
	ActionCancel:  {StatusPending},
	ActionRenew:   {StatusActive},
	ActionReturn:  {StatusActive},
}

func ValidTransition(action Action, from Status) bool {
	allowed, ok := transitionMap[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == from {
			return true
		}
	}
	return false
}

// IsOpen reports whether the borrowing still holds (or may hold) its copy.
func (s Status) IsOpen() bool { return s == StatusPending || s == StatusActive }
