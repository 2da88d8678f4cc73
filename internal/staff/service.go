package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	CreateStaff(ctx context.Context, m *Staff, password string) (*Staff, error)
	GetStaffByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	GetStaffByEmail(ctx context.Context, email string) (*Staff, error)
	ListStaff(ctx context.Context) ([]Staff, error)
	UpdateStaff(ctx context.Context, m *Staff, newPassword string) error
	DeleteStaff(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateStaff(ctx context.Context, m *Staff, password string) (*Staff, error) {
	if password == "" {
		return nil, errors.New("service: password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}
	m.PasswordHash = string(hash)

	if m.Role == "" {
		m.Role = RoleServer
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate staff id: %w", err)
	}
	m.ID = id

	if err := s.repo.Create(ctx, m); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		log.Error().Err(err).Msg("service: failed to create staff member")
		return nil, fmt.Errorf("service: failed to create staff member: %w", err)
	}

	log.Info().Stringer("staff_id", m.ID).Str("email", m.Email).Msg("service: staff member created")
	return m, nil
}

func (s *service) GetStaffByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch staff member by id '%s': %w", id, err)
	}
	return m, nil
}

func (s *service) GetStaffByEmail(ctx context.Context, email string) (*Staff, error) {
	m, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch staff member by email '%s': %w", email, err)
	}
	return m, nil
}

func (s *service) ListStaff(ctx context.Context) ([]Staff, error) {
	members, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list staff: %w", err)
	}
	return members, nil
}

func (s *service) UpdateStaff(ctx context.Context, m *Staff, newPassword string) error {
	if newPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("service: failed to hash password: %w", err)
		}
		m.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, m); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return ErrEmailExists
		}
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("service: failed to update staff member '%s': %w", m.ID, err)
	}
	return nil
}

func (s *service) DeleteStaff(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("service: failed to delete staff member '%s': %w", id, err)
	}
	return nil
}
