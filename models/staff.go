package models

import "time"

// Роли сотрудников. RoleAdmin — супер-арендатор, видит данные всех клубов.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

type StaffUser struct {
	ID           int       `json:"id" db:"id"`
	ClubID       int       `json:"club_id" db:"club_id"`
	FullName     string    `json:"full_name" db:"full_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
