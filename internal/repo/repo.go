package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const DefaultTimeout = 5 * time.Second

// GormRepo is the single store gateway. Every call is bounded by Timeout.
type GormRepo struct {
	DB      *gorm.DB
	Timeout time.Duration
}

func New(db *gorm.DB, timeout time.Duration) *GormRepo {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GormRepo{DB: db, Timeout: timeout}
}

func (r *GormRepo) scoped(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
