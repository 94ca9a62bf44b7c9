package model

import "time"

// User roles.
const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	PIN       string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Creator is the reduced user shape nested under pending orders.
type Creator struct {
	Name string `json:"name"`
	Role string `json:"role"`
}
