package carts

import "skyfare/internal/tickets"

type CartViewResponse struct {
	CartID   string                   `json:"cart_id"`
	Tickets  []tickets.TicketResponse `json:"tickets"`
	Messages []string                 `json:"messages"`
}
