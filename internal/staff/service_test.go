package staff_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kebapci/pos-service/internal/staff"
)

type mockRepository struct {
	createFunc func(ctx context.Context, m *staff.Staff) error
	updateFunc func(ctx context.Context, m *staff.Staff) error
}

func (m *mockRepository) Create(ctx context.Context, s *staff.Staff) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, s)
	}
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*staff.Staff, error) {
	return nil, staff.ErrNotFound
}

func (m *mockRepository) GetByEmail(ctx context.Context, email string) (*staff.Staff, error) {
	return nil, staff.ErrNotFound
}

func (m *mockRepository) List(ctx context.Context) ([]staff.Staff, error) {
	return nil, nil
}

func (m *mockRepository) Update(ctx context.Context, s *staff.Staff) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, s)
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func TestService_CreateStaff(t *testing.T) {
	t.Run("hashes_password", func(t *testing.T) {
		var saved *staff.Staff
		repo := &mockRepository{
			createFunc: func(ctx context.Context, s *staff.Staff) error {
				saved = s
				return nil
			},
		}
		svc := staff.NewService(repo)

		m, err := svc.CreateStaff(context.Background(), &staff.Staff{
			FirstName: "Ayşe",
			LastName:  "Demir",
			Email:     "ayse@example.com",
			Role:      staff.RoleManager,
		}, "s3cret-pass")
		require.NoError(t, err)
		require.NotNil(t, saved)

		assert.NotEqual(t, uuid.Nil, m.ID)
		assert.NotEqual(t, "s3cret-pass", m.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte("s3cret-pass")))
	})

	t.Run("empty_password_rejected", func(t *testing.T) {
		svc := staff.NewService(&mockRepository{})

		_, err := svc.CreateStaff(context.Background(), &staff.Staff{Email: "a@example.com"}, "")
		assert.Error(t, err)
	})

	t.Run("defaults_to_server_role", func(t *testing.T) {
		svc := staff.NewService(&mockRepository{})

		m, err := svc.CreateStaff(context.Background(), &staff.Staff{Email: "b@example.com"}, "pass")
		require.NoError(t, err)
		assert.Equal(t, staff.RoleServer, m.Role)
	})

	t.Run("duplicate_email", func(t *testing.T) {
		repo := &mockRepository{
			createFunc: func(ctx context.Context, s *staff.Staff) error {
				return staff.ErrEmailExists
			},
		}
		svc := staff.NewService(repo)

		_, err := svc.CreateStaff(context.Background(), &staff.Staff{Email: "dup@example.com"}, "pass")
		assert.ErrorIs(t, err, staff.ErrEmailExists)
	})
}

func TestService_UpdateStaff(t *testing.T) {
	t.Run("keeps_hash_without_new_password", func(t *testing.T) {
		svc := staff.NewService(&mockRepository{})

		m := &staff.Staff{Email: "c@example.com", PasswordHash: "existing-hash"}
		require.NoError(t, svc.UpdateStaff(context.Background(), m, ""))
		assert.Equal(t, "existing-hash", m.PasswordHash)
	})

	t.Run("rehashes_new_password", func(t *testing.T) {
		svc := staff.NewService(&mockRepository{})

		m := &staff.Staff{Email: "c@example.com", PasswordHash: "existing-hash"}
		require.NoError(t, svc.UpdateStaff(context.Background(), m, "new-pass"))
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte("new-pass")))
	})
}
