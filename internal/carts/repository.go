package carts

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetByUserID(userID uuid.UUID) (*Cart, error)
	Create(cart *Cart) error

	// AppendMessage adds one line to the cart's message buffer. A nil
	// tx uses the base connection.
	AppendMessage(tx *gorm.DB, cartID uuid.UUID, message string) error

	// DrainMessages returns the buffered lines and clears the buffer.
	DrainMessages(cartID uuid.UUID) ([]string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByUserID(userID uuid.UUID) (*Cart, error) {
	var cart Cart
	err := r.db.Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) Create(cart *Cart) error {
	return r.db.Create(cart).Error
}

func (r *repository) AppendMessage(tx *gorm.DB, cartID uuid.UUID, message string) error {
	conn := tx
	if conn == nil {
		conn = r.db
	}
	return conn.Model(&Cart{}).
		Where("id = ?", cartID).
		Update("messages", gorm.Expr("messages || ?", "\n"+message)).Error
}

func (r *repository) DrainMessages(cartID uuid.UUID) ([]string, error) {
	var buffered string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var cart Cart
		if err := tx.Where("id = ?", cartID).First(&cart).Error; err != nil {
			return err
		}
		buffered = cart.Messages
		if buffered == "" {
			return nil
		}
		return tx.Model(&Cart{}).Where("id = ?", cartID).Update("messages", "").Error
	})
	if err != nil {
		return nil, err
	}

	if buffered == "" {
		return nil, nil
	}
	lines := make([]string, 0)
	for _, line := range strings.Split(buffered, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
