package database

import (
	"skyfare/internal/carts"
	"skyfare/internal/facilities"
	"skyfare/internal/flights"
	"skyfare/internal/orders"
	"skyfare/internal/payments"
	"skyfare/internal/tickets"
	"skyfare/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&flights.Airplane{},
		&flights.Flight{},
		&facilities.Facility{},
		&facilities.FlightFacility{},
		&facilities.TicketFacility{},
		&facilities.FacilityCharge{},
		&carts.Cart{},
		&tickets.Ticket{},
		&orders.Order{},
		&payments.ProcessedCallback{},
	)
}
