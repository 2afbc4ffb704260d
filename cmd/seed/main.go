package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"skyfare/internal/facilities"
	"skyfare/internal/flights"
	"skyfare/internal/shared/config"
	"skyfare/internal/shared/database"
	"skyfare/internal/users"

	"github.com/google/uuid"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Skyfare Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"processed_callbacks",
		"facility_charges",
		"ticket_facilities",
		"tickets",
		"orders",
		"carts",
		"flight_facilities",
		"facilities",
		"flights",
		"airplanes",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll seeds users, fleet, flights and onboard facilities.
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	userIDs, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	airplaneIDs, err := s.SeedAirplanes()
	if err != nil {
		return fmt.Errorf("failed to seed airplanes: %w", err)
	}

	flightIDs, err := s.SeedFlights(userIDs["admin"], airplaneIDs)
	if err != nil {
		return fmt.Errorf("failed to seed flights: %w", err)
	}

	if err := s.SeedFacilities(userIDs["admin"], flightIDs); err != nil {
		return fmt.Errorf("failed to seed facilities: %w", err)
	}

	if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
		log.Printf("Warning: Failed to clear Redis cache: %v", err)
	}

	return nil
}

func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	seedUsers := []users.User{
		{Email: "admin@skyfare.io", FirstName: "Ada", LastName: "Admin", Role: "admin"},
		{Email: "shopper@skyfare.io", FirstName: "Sam", LastName: "Shopper", Role: "shopper"},
		{Email: "traveler@skyfare.io", FirstName: "Tess", LastName: "Traveler", Role: "shopper"},
		{Email: "desk@skyfare.io", FirstName: "Dana", LastName: "Desk", Role: "check_in_manager"},
		{Email: "gate@skyfare.io", FirstName: "Greg", LastName: "Gate", Role: "gate_manager"},
	}

	ids := make(map[string]uuid.UUID, len(seedUsers))
	for i := range seedUsers {
		if err := s.db.PostgreSQL.Create(&seedUsers[i]).Error; err != nil {
			return nil, err
		}
		ids[seedUsers[i].Role] = seedUsers[i].ID
		fmt.Printf("  Created user: %s (%s)\n", seedUsers[i].Email, seedUsers[i].Role)
	}
	return ids, nil
}

func (s *Seeder) SeedAirplanes() ([]uuid.UUID, error) {
	airplanes := []flights.Airplane{
		{EconomySeats: 40, BusinessSeats: 10},
		{EconomySeats: 60, BusinessSeats: 25},
		{EconomySeats: 20, BusinessSeats: 6},
	}

	ids := make([]uuid.UUID, 0, len(airplanes))
	for i := range airplanes {
		if err := s.db.PostgreSQL.Create(&airplanes[i]).Error; err != nil {
			return nil, err
		}
		ids = append(ids, airplanes[i].ID)
		fmt.Printf("  Created airplane: economy=%d business=%d\n", airplanes[i].EconomySeats, airplanes[i].BusinessSeats)
	}
	return ids, nil
}

func (s *Seeder) SeedFlights(adminID uuid.UUID, airplaneIDs []uuid.UUID) ([]uuid.UUID, error) {
	now := time.Now().UTC()
	type route struct {
		origin, destination string
		departIn            time.Duration
		length              time.Duration
		airplane            int
	}
	routes := []route{
		{"Kyiv", "Warsaw", 24 * time.Hour, 2 * time.Hour, 0},
		{"Warsaw", "Berlin", 36 * time.Hour, 90 * time.Minute, 1},
		{"Kyiv", "Vienna", 48 * time.Hour, 2*time.Hour + 15*time.Minute, 1},
		{"Lviv", "Krakow", 72 * time.Hour, time.Hour, 2},
	}

	ids := make([]uuid.UUID, 0, len(routes))
	for _, rt := range routes {
		var airplane flights.Airplane
		if err := s.db.PostgreSQL.First(&airplane, "id = ?", airplaneIDs[rt.airplane]).Error; err != nil {
			return nil, err
		}

		flight := flights.Flight{
			Origin:      rt.origin,
			Destination: rt.destination,
			DepartureAt: now.Add(rt.departIn),
			ArrivalAt:   now.Add(rt.departIn + rt.length),
			AirplaneID:  airplane.ID,

			EconomyCapacity:  airplane.EconomySeats,
			BusinessCapacity: airplane.BusinessSeats,

			EconomyPrice:          2500,
			BusinessPrice:         7500,
			EconomySeatSurcharge:  150,
			BusinessSeatSurcharge: 400,

			CreatedBy: adminID,
		}
		if err := s.db.PostgreSQL.Create(&flight).Error; err != nil {
			return nil, err
		}
		ids = append(ids, flight.ID)
		fmt.Printf("  Created flight: %s -> %s\n", rt.origin, rt.destination)
	}
	return ids, nil
}

func (s *Seeder) SeedFacilities(adminID uuid.UUID, flightIDs []uuid.UUID) error {
	seedFacilities := []facilities.Facility{
		{Name: "Extra baggage", Description: "One additional 23kg checked bag", Price: 800, IsActive: true, CreatedBy: adminID},
		{Name: "Hot meal", Description: "Hot meal served on board", Price: 350, IsActive: true, CreatedBy: adminID},
		{Name: "Priority boarding", Description: "Board before general boarding", Price: 200, IsActive: true, CreatedBy: adminID},
		{Name: "Lounge access", Description: "Business lounge access before departure", Price: 1200, IsActive: true, CreatedBy: adminID},
	}

	for i := range seedFacilities {
		if err := s.db.PostgreSQL.Create(&seedFacilities[i]).Error; err != nil {
			return err
		}
		fmt.Printf("  Created facility: %s\n", seedFacilities[i].Name)
	}

	// Offer every facility on every flight; the first flight gets a
	// discounted hot meal to exercise the per-flight override.
	mealDiscount := 250
	for fi, flightID := range flightIDs {
		for si := range seedFacilities {
			link := facilities.FlightFacility{
				FlightID:   flightID,
				FacilityID: seedFacilities[si].ID,
			}
			if fi == 0 && seedFacilities[si].Name == "Hot meal" {
				link.Price = &mealDiscount
			}
			if err := s.db.PostgreSQL.Create(&link).Error; err != nil {
				return err
			}
		}
	}
	fmt.Printf("  Linked %d facilities to %d flights\n", len(seedFacilities), len(flightIDs))
	return nil
}
