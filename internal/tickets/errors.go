package tickets

import "errors"

var (
	ErrSeatFull          = errors.New("this flight is full")
	ErrInvalidSeatNumber = errors.New("not a valid seat number")
	ErrSeatBusy          = errors.New("this seat is busy")
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrNotTicketOwner    = errors.New("ticket does not belong to this cart")
	ErrTicketNotHeld     = errors.New("ticket is no longer held")
)
