package domain

import "time"

type Role string

const (
	RoleCandidate Role = "candidate"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

const MsgEmailRegistered = "Email already registered. Please sign in instead."

type User struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	PhoneNumber      *string   `json:"phoneNumber"`
	PhoneCountryCode *string   `json:"phoneCountryCode"`
	UserType         Role      `json:"userType"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	Version          int32     `json:"-"`
}
