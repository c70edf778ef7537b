package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/teamgate/internal/token/domain"
	"github.com/smallbiznis/teamgate/internal/token/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Token{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(zap.NewNop(), repository.New(conn), node)
}

func TestIssueGeneratesUniqueValues(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		token, err := svc.Issue(ctx, domain.IssueRequest{
			Kind:  domain.KindInvite,
			TTL:   domain.InviteTTL,
			Email: "someone@example.com",
		})
		require.NoError(t, err)
		assert.False(t, seen[token.Value], "token value repeated")
		seen[token.Value] = true
	}
}

func TestValidateAndConsumeSingleUse(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	token, err := svc.Issue(ctx, domain.IssueRequest{
		Kind:  domain.KindInvite,
		TTL:   domain.InviteTTL,
		Email: "hire@example.com",
		Role:  "employee",
	})
	require.NoError(t, err)

	consumed, err := svc.ValidateAndConsume(ctx, token.Value, domain.KindInvite)
	require.NoError(t, err)
	assert.True(t, consumed.Consumed)
	assert.Equal(t, "hire@example.com", consumed.Email)

	_, err = svc.ValidateAndConsume(ctx, token.Value, domain.KindInvite)
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpired)
}

func TestValidateAndConsumeConcurrent(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// One connection so every goroutine sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, conn.AutoMigrate(&domain.Token{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := New(zap.NewNop(), repository.New(conn), node)
	ctx := context.Background()

	token, err := svc.Issue(ctx, domain.IssueRequest{
		Kind:  domain.KindInvite,
		TTL:   domain.InviteTTL,
		Email: "hire@example.com",
	})
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	var successes atomic.Int32
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ValidateAndConsume(ctx, token.Value, domain.KindInvite); err != nil {
				errs <- err
				return
			}
			successes.Add(1)
		}()
	}
	wg.Wait()
	close(errs)

	assert.Equal(t, int32(1), successes.Load(), "exactly one consume must win")
	for err := range errs {
		assert.ErrorIs(t, err, domain.ErrInvalidOrExpired)
	}
}

func TestValidateAndConsumeExpired(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	token, err := svc.Issue(ctx, domain.IssueRequest{
		Kind:  domain.KindPasswordReset,
		TTL:   -time.Minute,
		Email: "late@example.com",
	})
	require.NoError(t, err)

	_, err = svc.ValidateAndConsume(ctx, token.Value, domain.KindPasswordReset)
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpired)
}

func TestValidateAndConsumeWrongKind(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	token, err := svc.Issue(ctx, domain.IssueRequest{
		Kind:  domain.KindInvite,
		TTL:   domain.InviteTTL,
		Email: "hire@example.com",
	})
	require.NoError(t, err)

	_, err = svc.ValidateAndConsume(ctx, token.Value, domain.KindPasswordReset)
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpired)

	// The token survives a wrong-kind attempt.
	consumed, err := svc.ValidateAndConsume(ctx, token.Value, domain.KindInvite)
	require.NoError(t, err)
	assert.True(t, consumed.Consumed)
}

func TestValidateAndConsumeUnknownValue(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ValidateAndConsume(context.Background(), "no-such-token", domain.KindInvite)
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpired)

	_, err = svc.ValidateAndConsume(context.Background(), "", domain.KindInvite)
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpired)
}

func TestDeleteRemovesToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	token, err := svc.Issue(ctx, domain.IssueRequest{
		Kind:  domain.KindInvite,
		TTL:   domain.InviteTTL,
		Email: "gone@example.com",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, token.Value))

	_, err = svc.ValidateAndConsume(ctx, token.Value, domain.KindInvite)
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpired)
}

func TestIssueCarriesEmployeePayload(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	salary := 85000.0
	token, err := svc.Issue(ctx, domain.IssueRequest{
		Kind:  domain.KindInvite,
		TTL:   domain.InviteTTL,
		Email: "hire@example.com",
		Role:  "employee",
		Payload: &domain.EmployeeProvisioning{
			EmployeeID: "EMP-042",
			Department: "Engineering",
			Position:   "Backend Engineer",
			HireDate:   "2026-09-01",
			Salary:     &salary,
		},
	})
	require.NoError(t, err)

	payload, err := token.EmployeePayload()
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Equal(t, "EMP-042", payload.EmployeeID)
	assert.Equal(t, "Engineering", payload.Department)
	require.NotNil(t, payload.Salary)
	assert.Equal(t, salary, *payload.Salary)
}

func TestListPendingSkipsConsumedAndExpired(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	orgID := node.Generate()

	pending, err := svc.Issue(ctx, domain.IssueRequest{
		Kind:  domain.KindInvite,
		TTL:   domain.InviteTTL,
		Email: "pending@example.com",
		OrgID: &orgID,
	})
	require.NoError(t, err)

	consumed, err := svc.Issue(ctx, domain.IssueRequest{
		Kind:  domain.KindInvite,
		TTL:   domain.InviteTTL,
		Email: "consumed@example.com",
		OrgID: &orgID,
	})
	require.NoError(t, err)
	_, err = svc.ValidateAndConsume(ctx, consumed.Value, domain.KindInvite)
	require.NoError(t, err)

	_, err = svc.Issue(ctx, domain.IssueRequest{
		Kind:  domain.KindInvite,
		TTL:   -time.Minute,
		Email: "expired@example.com",
		OrgID: &orgID,
	})
	require.NoError(t, err)

	list, err := svc.ListPending(ctx, orgID, domain.KindInvite)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pending.Value, list[0].Value)
}
