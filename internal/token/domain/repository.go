package domain

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, token *Token) error
	// Consume atomically flips consumed=false to true for the matching
	// unexpired token and returns the record. Returns ErrInvalidOrExpired
	// when no row matched.
	Consume(ctx context.Context, value string, kind Kind, now time.Time) (*Token, error)
	FindByValue(ctx context.Context, value string) (*Token, error)
	DeleteByValue(ctx context.Context, value string) error
	ListPending(ctx context.Context, orgID int64, kind Kind, now time.Time) ([]Token, error)
}
