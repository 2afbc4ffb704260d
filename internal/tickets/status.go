package tickets

// Status is the lifecycle state of a ticket.
//
// booked      - seat held, waiting for checkout and payment
// available   - hold expired; the seat can be reclaimed by anyone
// checked_out - paid for
type Status string

const (
	StatusBooked     Status = "booked"
	StatusAvailable  Status = "available"
	StatusCheckedOut Status = "checked_out"
)

// ActiveStatuses are the states that consume cabin capacity and block
// their seat number. An expired hold does neither: its seat is free to
// reclaim, and the acquire that claims it evicts the stale ticket.
var ActiveStatuses = []Status{StatusBooked, StatusCheckedOut}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusBooked, StatusAvailable, StatusCheckedOut:
		return true
	}
	return false
}
