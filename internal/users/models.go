package users

import (
	"time"

	"github.com/google/uuid"
)

// User is the minimal identity record the booking core needs: shoppers own
// carts and orders, staff accounts stamp check-in and gate events. Account
// management and authentication live in an external service.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	FirstName string    `json:"first_name" gorm:"size:100"`
	LastName  string    `json:"last_name" gorm:"size:100"`
	Role      string    `json:"role" gorm:"type:varchar(30);default:'shopper'"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	return u.FirstName + " " + u.LastName
}
