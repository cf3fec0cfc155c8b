package user

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an account owner. Forms, subscriptions and quota rows hang off it.
type User struct {
	id                 uint
	email              string
	name               string
	passwordHash       string
	role               Role
	providerCustomerID string
	createdAt          time.Time
	updatedAt          time.Time
}

func NewUser(email, name, passwordHash string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email address: %s", email)
	}
	now := time.Now().UTC()
	return &User{
		email:        email,
		name:         strings.TrimSpace(name),
		passwordHash: passwordHash,
		role:         RoleUser,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

func ReconstructUser(id uint, email, name, passwordHash string, role Role, providerCustomerID string, createdAt, updatedAt time.Time) *User {
	return &User{
		id:                 id,
		email:              email,
		name:               name,
		passwordHash:       passwordHash,
		role:               role,
		providerCustomerID: providerCustomerID,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

func (u *User) ID() uint                   { return u.id }
func (u *User) Email() string              { return u.email }
func (u *User) Name() string               { return u.name }
func (u *User) PasswordHash() string       { return u.passwordHash }
func (u *User) Role() Role                 { return u.role }
func (u *User) ProviderCustomerID() string { return u.providerCustomerID }
func (u *User) CreatedAt() time.Time       { return u.createdAt }
func (u *User) UpdatedAt() time.Time       { return u.updatedAt }

func (u *User) IsAdmin() bool {
	return u.role == RoleAdmin
}

// DisplayName falls back to the email when no name is set.
func (u *User) DisplayName() string {
	if u.name != "" {
		return u.name
	}
	return u.email
}

func (u *User) SetID(id uint) {
	u.id = id
}

// LinkProviderCustomer records the payment provider customer id once.
func (u *User) LinkProviderCustomer(customerID string) {
	u.providerCustomerID = customerID
	u.updatedAt = time.Now().UTC()
}
