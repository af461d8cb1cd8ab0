package reservation

// NextPosition returns the position a new entry joins the pending cohort at.
// It is max+1 rather than count+1 so cancellations never produce a duplicate.
func NextPosition(pending []Reservation) int {
	maxPos := 0
	for _, r := range pending {
		if r.Status == StatusPending && r.QueuePosition > maxPos {
			maxPos = r.QueuePosition
		}
	}
	return maxPos + 1
}

// Head returns the pending reservation served next, or nil.
func Head(pending []Reservation) *Reservation {
	var head *Reservation
	for i := range pending {
		r := &pending[i]
		if r.Status != StatusPending {
			continue
		}
		if head == nil || r.QueuePosition < head.QueuePosition {
			head = r
		}
	}
	return head
}
