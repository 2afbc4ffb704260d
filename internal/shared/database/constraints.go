package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds database objects AutoMigrate cannot express.
func MigrateConstraints(db *gorm.DB) error {
	// uuid_generate_v4() defaults on the models need the extension.
	err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error
	if err != nil {
		return err
	}

	// One active ticket per assigned seat in a cabin. An expired hold
	// does not block its seat, so the index skips available rows.
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_seat_per_cabin
		ON tickets (flight_id, cabin_class, seat_number)
		WHERE seat_number IS NOT NULL AND status IN ('booked', 'checked_out');
	`).Error
	if err != nil {
		return err
	}

	// Hold expiry sweeps scan booked tickets by age.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tickets_status_created_at
		ON tickets (status, created_at);
	`).Error
	if err != nil {
		return err
	}

	// Seat availability queries group by flight and cabin.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tickets_flight_cabin
		ON tickets (flight_id, cabin_class);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
