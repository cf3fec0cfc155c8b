package user

import "context"

// Repository persists users. Lookups return (nil, nil) when not found.
type Repository interface {
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByProviderCustomerID(ctx context.Context, customerID string) (*User, error)
}
