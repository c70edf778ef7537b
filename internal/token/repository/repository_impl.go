package repository

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/teamgate/internal/token/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, token *domain.Token) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *repo) Consume(ctx context.Context, value string, kind domain.Kind, now time.Time) (*domain.Token, error) {
	// Single conditional UPDATE with consumed=false in the filter predicate,
	// not a read-then-write. RowsAffected 0 covers miss, replay and expiry
	// without distinguishing them.
	tx := r.db.WithContext(ctx).
		Model(&domain.Token{}).
		Where("value = ? AND kind = ? AND consumed = ? AND expires_at > ?", value, kind, false, now).
		Updates(map[string]any{"consumed": true, "updated_at": now})
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, domain.ErrInvalidOrExpired
	}

	var token domain.Token
	if err := r.db.WithContext(ctx).Where("value = ?", value).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *repo) FindByValue(ctx context.Context, value string) (*domain.Token, error) {
	var token domain.Token
	err := r.db.WithContext(ctx).Where("value = ?", value).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvalidOrExpired
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *repo) DeleteByValue(ctx context.Context, value string) error {
	return r.db.WithContext(ctx).Where("value = ?", value).Delete(&domain.Token{}).Error
}

func (r *repo) ListPending(ctx context.Context, orgID int64, kind domain.Kind, now time.Time) ([]domain.Token, error) {
	var tokens []domain.Token
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND kind = ? AND consumed = ? AND expires_at > ?", orgID, kind, false, now).
		Order("created_at ASC").
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}
