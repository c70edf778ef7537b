package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/teamgate/internal/department/domain"
	"github.com/smallbiznis/teamgate/internal/department/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Department{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(zap.NewNop(), repository.New(conn), node), node
}

func TestEnsureCreatesThenIncrements(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()
	orgID := node.Generate()

	first, err := svc.Ensure(ctx, orgID, "Engineering")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.EmployeeCount)

	for i := 2; i <= 5; i++ {
		dept, err := svc.Ensure(ctx, orgID, "Engineering")
		require.NoError(t, err)
		assert.Equal(t, first.ID, dept.ID, "ensure must not create a second row")
		assert.Equal(t, int64(i), dept.EmployeeCount)
	}

	list, err := svc.ListByOrg(ctx, orgID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEnsureSeparatesOrgsAndNames(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()
	orgA := node.Generate()
	orgB := node.Generate()

	_, err := svc.Ensure(ctx, orgA, "Engineering")
	require.NoError(t, err)
	_, err = svc.Ensure(ctx, orgA, "Sales")
	require.NoError(t, err)
	_, err = svc.Ensure(ctx, orgB, "Engineering")
	require.NoError(t, err)

	listA, err := svc.ListByOrg(ctx, orgA)
	require.NoError(t, err)
	assert.Len(t, listA, 2)

	listB, err := svc.ListByOrg(ctx, orgB)
	require.NoError(t, err)
	require.Len(t, listB, 1)
	assert.Equal(t, int64(1), listB[0].EmployeeCount)
}

func TestEnsureRejectsEmptyName(t *testing.T) {
	svc, node := newTestService(t)

	_, err := svc.Ensure(context.Background(), node.Generate(), "   ")
	assert.Error(t, err)
}
