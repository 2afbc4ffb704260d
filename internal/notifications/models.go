package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TicketDelivery is the message published after payment confirms a
// ticket. It carries everything the email worker needs so the
// consumer never touches the database.
type TicketDelivery struct {
	ID             string `json:"id"`
	TicketID       string `json:"ticket_id"`
	OrderReference string `json:"order_reference"`
	RecipientEmail string `json:"recipient_email"`

	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DepartureAt time.Time `json:"departure_at"`
	ArrivalAt   time.Time `json:"arrival_at"`

	CabinClass string   `json:"cabin_class"`
	SeatNumber *int     `json:"seat_number"`
	FirstName  *string  `json:"first_name"`
	LastName   *string  `json:"last_name"`
	Facilities []string `json:"facilities"`

	CreatedAt time.Time `json:"created_at"`
}

func NewTicketDelivery() *TicketDelivery {
	return &TicketDelivery{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
	}
}

func (d *TicketDelivery) ToJSON() ([]byte, error) {
	return json.Marshal(d)
}

// GetPartitionKey keeps all deliveries for one recipient on the same
// partition so their emails arrive in order.
func (d *TicketDelivery) GetPartitionKey() string {
	if d.RecipientEmail != "" {
		return d.RecipientEmail
	}
	return d.TicketID
}

// PassengerName renders the name line for the ticket email.
func (d *TicketDelivery) PassengerName() string {
	first, last := "", ""
	if d.FirstName != nil {
		first = *d.FirstName
	}
	if d.LastName != nil {
		last = *d.LastName
	}
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	}
	return "Passenger"
}
