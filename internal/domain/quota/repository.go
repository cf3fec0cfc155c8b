package quota

import "context"

// StatusRepository persists monthly quota status rows.
type StatusRepository interface {
	// GetByUserAndMonth returns (nil, nil) when the row does not exist.
	GetByUserAndMonth(ctx context.Context, userID uint, month MonthKey) (*Status, error)
	// Create fails with a duplicate error if another writer created the row first.
	Create(ctx context.Context, s *Status) error
	Update(ctx context.Context, s *Status) error
}
