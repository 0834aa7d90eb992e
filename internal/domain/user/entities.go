package user

import "time"

// User is the borrower profile the document pipeline reads identity data from.
type User struct {
	ID             uint64    `gorm:"primaryKey;column:id" json:"-"`
	UserID         string    `gorm:"size:32;uniqueIndex:ux_users_user_id" json:"user_id"`
	FullName       string    `gorm:"size:160" json:"full_name"`
	DocumentNumber string    `gorm:"column:document_number;size:32" json:"document_number"`
	Email          string    `gorm:"size:160" json:"email"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }
