package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skarbek/skarbek-api/internal/domain"
	"github.com/skarbek/skarbek-api/internal/mailer"
	"github.com/skarbek/skarbek-api/internal/metrics"
	"github.com/skarbek/skarbek-api/internal/pkg/password"
	"github.com/skarbek/skarbek-api/internal/repository"
)

var (
	ErrParentNotFound    = repository.ErrParentNotFound
	ErrParentEmailExists = repository.ErrParentEmailExists
	ErrEmailDispatch     = errors.New("failed to send temporary password")
)

type ParentRepository interface {
	Create(ctx context.Context, parent domain.Parent, passwordHash string) (domain.Parent, error)
	FindByID(ctx context.Context, id uint) (domain.Parent, error)
	FindByEmail(ctx context.Context, email string) (domain.Parent, error)
	List(ctx context.Context, includeHidden bool) ([]domain.Parent, error)
	UpdateProfile(ctx context.Context, id uint, name, email string) (domain.Parent, error)
	SetHidden(ctx context.Context, id uint, hidden bool) (domain.Parent, error)
	UpdatePassword(ctx context.Context, id uint, hash string, force bool, changedAt *time.Time) (domain.ParentCredential, error)
	Delete(ctx context.Context, id uint) error
}

type PasswordGenerator interface {
	Generate() (string, error)
}

type ParentService struct {
	tx        Transactor
	repo      ParentRepository
	mail      mailer.Sender
	generator PasswordGenerator
	policy    password.Policy
}

func NewParentService(tx Transactor, repo ParentRepository, mail mailer.Sender, generator PasswordGenerator, policy password.Policy) *ParentService {
	return &ParentService{
		tx:        tx,
		repo:      repo,
		mail:      mail,
		generator: generator,
		policy:    policy,
	}
}

type NewParent struct {
	Name    string
	Email   string
	PupilID *string
}

// CreateParent stores a parent with a generated temporary password and mails
// it. The parent row only survives if the mail was handed off successfully.
func (s *ParentService) CreateParent(ctx context.Context, input NewParent) (domain.Parent, error) {
	email := strings.TrimSpace(input.Email)

	temporary, err := s.generator.Generate()
	if err != nil {
		return domain.Parent{}, fmt.Errorf("s.generator.Generate -> %w", err)
	}

	hash, err := password.Hash(temporary)
	if err != nil {
		return domain.Parent{}, fmt.Errorf("password.Hash -> %w", err)
	}

	var created domain.Parent

	// The write lock is held while the mail is handed off; the row must not
	// outlive a failed dispatch.
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.checkEmailAvailable(ctx, email, 0); err != nil {
			return err
		}

		var err error
		created, err = s.repo.Create(ctx, domain.Parent{
			Name:    input.Name,
			Email:   email,
			PupilID: input.PupilID,
		}, hash)
		if err != nil {
			return fmt.Errorf("s.repo.Create -> %w", err)
		}

		if err = s.mail.SendTemporaryPassword(ctx, created.Email, temporary, created.Name); err != nil {
			metrics.TemporaryPasswordEmails.WithLabelValues("failed").Inc()
			zap.L().Error("temporary password dispatch failed, rolling back parent",
				zap.String("email", created.Email),
				zap.Error(err),
			)
			return fmt.Errorf("%w: %v", ErrEmailDispatch, err)
		}
		metrics.TemporaryPasswordEmails.WithLabelValues("sent").Inc()

		return nil
	})
	if err != nil {
		return domain.Parent{}, err
	}

	return created, nil
}

func (s *ParentService) GetParent(ctx context.Context, id uint) (domain.Parent, error) {
	parent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Parent{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return parent, nil
}

func (s *ParentService) ListParents(ctx context.Context, includeHidden bool) ([]domain.Parent, error) {
	parents, err := s.repo.List(ctx, includeHidden)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return parents, nil
}

// UpdateParent changes name and/or email. Empty values keep the current one.
func (s *ParentService) UpdateParent(ctx context.Context, id uint, name, email string) (domain.Parent, error) {
	var updated domain.Parent

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("s.repo.FindByID -> %w", err)
		}

		if name == "" {
			name = current.Name
		}

		email = strings.TrimSpace(email)
		if email == "" {
			email = current.Email
		} else if email != current.Email {
			if err = s.checkEmailAvailable(ctx, email, id); err != nil {
				return err
			}
		}

		updated, err = s.repo.UpdateProfile(ctx, id, name, email)
		if err != nil {
			return fmt.Errorf("s.repo.UpdateProfile -> %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Parent{}, err
	}

	return updated, nil
}

func (s *ParentService) SetHidden(ctx context.Context, id uint, hidden bool) (domain.Parent, error) {
	parent, err := s.repo.SetHidden(ctx, id, hidden)
	if err != nil {
		return domain.Parent{}, fmt.Errorf("s.repo.SetHidden -> %w", err)
	}

	return parent, nil
}

// ResetPassword is the admin-side password change. It puts the parent back
// into the forced change state and invalidates their existing tokens.
func (s *ParentService) ResetPassword(ctx context.Context, id uint, newPassword string) error {
	if err := s.policy.Check(newPassword); err != nil {
		return err
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("password.Hash -> %w", err)
	}

	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.UpdatePassword(ctx, id, hash, true, nil); err != nil {
			return fmt.Errorf("s.repo.UpdatePassword -> %w", err)
		}

		return nil
	})
}

// DeleteParent removes the parent together with its contributions.
func (s *ParentService) DeleteParent(ctx context.Context, id uint) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("s.repo.Delete -> %w", err)
		}

		return nil
	})
}

func (s *ParentService) checkEmailAvailable(ctx context.Context, email string, ownerID uint) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		if existing.ID == ownerID {
			return nil
		}
		return ErrParentEmailExists
	}
	if !errors.Is(err, repository.ErrParentNotFound) {
		return fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	return nil
}
