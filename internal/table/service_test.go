package table_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kebapci/pos-service/internal/table"
)

type mockRepository struct {
	createFunc         func(ctx context.Context, t *table.Table) error
	getByIDFunc        func(ctx context.Context, id uuid.UUID) (*table.Table, error)
	softDeleteFunc     func(ctx context.Context, id uuid.UUID) error
	hasActiveOrderFunc func(ctx context.Context, id uuid.UUID) (bool, error)
}

func (m *mockRepository) Create(ctx context.Context, t *table.Table) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, t)
	}
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*table.Table, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, table.ErrTableNotFound
}

func (m *mockRepository) List(ctx context.Context) ([]table.Table, error) {
	return nil, nil
}

func (m *mockRepository) Update(ctx context.Context, t *table.Table) error {
	return nil
}

func (m *mockRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if m.softDeleteFunc != nil {
		return m.softDeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockRepository) HasActiveOrder(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.hasActiveOrderFunc != nil {
		return m.hasActiveOrderFunc(ctx, id)
	}
	return false, nil
}

func mustUUID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV4()
	require.NoError(t, err)
	return id
}

func TestService_CreateTable(t *testing.T) {
	svc := table.NewService(&mockRepository{})

	created, err := svc.CreateTable(context.Background(), &table.Table{Name: "T1"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
}

func TestService_DeleteTable(t *testing.T) {
	t.Run("busy_table_is_kept", func(t *testing.T) {
		deleted := false
		repo := &mockRepository{
			hasActiveOrderFunc: func(ctx context.Context, id uuid.UUID) (bool, error) {
				return true, nil
			},
			softDeleteFunc: func(ctx context.Context, id uuid.UUID) error {
				deleted = true
				return nil
			},
		}
		svc := table.NewService(repo)

		err := svc.DeleteTable(context.Background(), mustUUID(t))
		assert.ErrorIs(t, err, table.ErrTableBusy)
		assert.False(t, deleted)
	})

	t.Run("idle_table_is_soft_deleted", func(t *testing.T) {
		deleted := false
		repo := &mockRepository{
			softDeleteFunc: func(ctx context.Context, id uuid.UUID) error {
				deleted = true
				return nil
			},
		}
		svc := table.NewService(repo)

		require.NoError(t, svc.DeleteTable(context.Background(), mustUUID(t)))
		assert.True(t, deleted)
	})

	t.Run("unknown_table", func(t *testing.T) {
		repo := &mockRepository{
			softDeleteFunc: func(ctx context.Context, id uuid.UUID) error {
				return table.ErrTableNotFound
			},
		}
		svc := table.NewService(repo)

		err := svc.DeleteTable(context.Background(), mustUUID(t))
		assert.ErrorIs(t, err, table.ErrTableNotFound)
	})
}
