package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/teamgate/internal/token/domain"
	"go.uber.org/zap"
)

// tokenBytes yields 256 bits of entropy per token value; collision
// probability is treated as negligible.
const tokenBytes = 32

type service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &service{
		log:   log.Named("token.service"),
		repo:  repo,
		genID: genID,
	}
}

func (s *service) Issue(ctx context.Context, req domain.IssueRequest) (*domain.Token, error) {
	value, err := newTokenValue()
	if err != nil {
		return nil, err
	}

	payload, err := domain.MarshalPayload(req.Payload)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	token := &domain.Token{
		ID:        s.genID.Generate(),
		Value:     value,
		Kind:      req.Kind,
		Email:     req.Email,
		Role:      req.Role,
		OrgID:     req.OrgID,
		Payload:   payload,
		Consumed:  false,
		ExpiresAt: now.Add(req.TTL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, token); err != nil {
		return nil, err
	}

	s.log.Debug("token issued",
		zap.String("kind", string(req.Kind)),
		zap.Time("expires_at", token.ExpiresAt),
	)
	return token, nil
}

func (s *service) ValidateAndConsume(ctx context.Context, value string, kind domain.Kind) (*domain.Token, error) {
	if value == "" {
		return nil, domain.ErrInvalidOrExpired
	}
	return s.repo.Consume(ctx, value, kind, time.Now().UTC())
}

func (s *service) Delete(ctx context.Context, value string) error {
	return s.repo.DeleteByValue(ctx, value)
}

func (s *service) Find(ctx context.Context, value string) (*domain.Token, error) {
	return s.repo.FindByValue(ctx, value)
}

func (s *service) ListPending(ctx context.Context, orgID snowflake.ID, kind domain.Kind) ([]domain.Token, error) {
	return s.repo.ListPending(ctx, int64(orgID), kind, time.Now().UTC())
}

func newTokenValue() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
