package models

import (
	"golang.org/x/crypto/bcrypt"
)

// User roles understood by the dashboard layer.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User represents a dashboard login (admin, teacher/manager or
// student/employee) scoped to one tenant.
type User struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	SessionCodeID uint   `json:"session_code_id" gorm:"not null;uniqueIndex:uix_user_name"`
	Username      string `json:"username" gorm:"not null;uniqueIndex:uix_user_name"`
	PasswordHash  string `json:"-" gorm:"not null"` // "-" means don't include in JSON responses
	RegID         string `json:"reg_id"`            // links a student/employee login to their attendance identity
	Role          string `json:"role" gorm:"not null"`
	CreatedAt     int64  `json:"created_at" gorm:"not null"`
	UpdatedAt     int64  `json:"updated_at" gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (User) TableName() string {
	return "users"
}

// SetPassword hashes the given password and sets it on the user model.
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the given password matches the user's hashed password.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}
