package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the persisted identity behind an Actor.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name         string         `gorm:"column:name;not null" json:"name"`
	Email        string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string         `gorm:"column:password_hash;not null" json:"-"`
	Phone        string         `gorm:"column:phone" json:"phone"`
	Role         Role           `gorm:"column:role;type:varchar(20);not null;default:user" json:"role"`
	Status       ApprovalStatus `gorm:"column:status;type:varchar(20);not null;default:active" json:"status"`
	CreatedAt    time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"column:updated_at" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Actor returns the request identity for u.
func (u *User) Actor() *Actor {
	return &Actor{ID: u.ID, Role: u.Role, ApprovalStatus: u.Status}
}

// Contact returns the public contact card of u.
func (u *User) Contact() *OwnerContact {
	return &OwnerContact{Name: u.Name, Email: u.Email, Phone: u.Phone}
}
