package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/skarbek/skarbek-api/internal/domain"
	"github.com/skarbek/skarbek-api/internal/repository/dao"
)

var (
	ErrAdminExists       = dao.ErrAdminExists
	ErrAdminNotFound     = dao.ErrAdminNotFound
	ErrParentEmailExists = dao.ErrParentEmailExists
	ErrParentNotFound    = dao.ErrParentNotFound
)

type AdminDAO interface {
	Insert(ctx context.Context, admin dao.Admin) (dao.Admin, error)
	FindByUsername(ctx context.Context, username string) (dao.Admin, error)
	FindByID(ctx context.Context, id uint) (dao.Admin, error)
}

type AdminRepository struct {
	dao AdminDAO
}

func NewAdminRepository(dao AdminDAO) *AdminRepository {
	return &AdminRepository{
		dao: dao,
	}
}

func (r *AdminRepository) Create(ctx context.Context, admin domain.Admin) (domain.Admin, error) {
	created, err := r.dao.Insert(ctx, dao.Admin{
		Username: admin.Username,
		Password: admin.Password,
		Role:     string(domain.RoleAdmin),
	})
	if err != nil {
		return domain.Admin{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (domain.Admin, error) {
	found, err := r.dao.FindByUsername(ctx, username)
	if err != nil {
		return domain.Admin{}, fmt.Errorf("r.dao.FindByUsername -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *AdminRepository) FindByID(ctx context.Context, id uint) (domain.Admin, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Admin{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *AdminRepository) daoToDomain(a dao.Admin) domain.Admin {
	return domain.Admin{
		ID:        a.ID,
		Username:  a.Username,
		Password:  a.Password,
		CreatedAt: a.CreatedAt,
	}
}

type ParentDAO interface {
	Insert(ctx context.Context, parent dao.Parent) (dao.Parent, error)
	FindByID(ctx context.Context, id uint) (dao.Parent, error)
	FindByEmail(ctx context.Context, email string) (dao.Parent, error)
	FindByPupilID(ctx context.Context, pupilID string) (dao.Parent, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]dao.Parent, error)
	List(ctx context.Context, includeHidden bool) ([]dao.Parent, error)
	UpdateProfile(ctx context.Context, id uint, name, email string) (dao.Parent, error)
	SetHidden(ctx context.Context, id uint, hidden bool) (dao.Parent, error)
	UpdatePassword(ctx context.Context, id uint, hash string, force bool, changedAt *time.Time) (dao.Parent, error)
	Delete(ctx context.Context, id uint) error
}

// ParentRepository maps parent rows to domain.Parent. Password state is only
// exposed through the credential methods.
type ParentRepository struct {
	dao ParentDAO
}

func NewParentRepository(dao ParentDAO) *ParentRepository {
	return &ParentRepository{
		dao: dao,
	}
}

// Create stores a new parent in the forced password change state.
func (r *ParentRepository) Create(ctx context.Context, parent domain.Parent, passwordHash string) (domain.Parent, error) {
	created, err := r.dao.Insert(ctx, dao.Parent{
		Name:                parent.Name,
		Email:               parent.Email,
		PupilID:             parent.PupilID,
		Password:            passwordHash,
		ForcePasswordChange: true,
		IsHidden:            parent.IsHidden,
	})
	if err != nil {
		return domain.Parent{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ParentRepository) FindByID(ctx context.Context, id uint) (domain.Parent, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Parent{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ParentRepository) FindByEmail(ctx context.Context, email string) (domain.Parent, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.Parent{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ParentRepository) FindByPupilID(ctx context.Context, pupilID string) (domain.Parent, error) {
	found, err := r.dao.FindByPupilID(ctx, pupilID)
	if err != nil {
		return domain.Parent{}, fmt.Errorf("r.dao.FindByPupilID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ParentRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]domain.Parent, error) {
	found, err := r.dao.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByIDs -> %w", err)
	}

	parents := make(map[uint]domain.Parent, len(found))
	for id, p := range found {
		parents[id] = r.daoToDomain(p)
	}

	return parents, nil
}

func (r *ParentRepository) List(ctx context.Context, includeHidden bool) ([]domain.Parent, error) {
	found, err := r.dao.List(ctx, includeHidden)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *ParentRepository) UpdateProfile(ctx context.Context, id uint, name, email string) (domain.Parent, error) {
	updated, err := r.dao.UpdateProfile(ctx, id, name, email)
	if err != nil {
		return domain.Parent{}, fmt.Errorf("r.dao.UpdateProfile -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *ParentRepository) SetHidden(ctx context.Context, id uint, hidden bool) (domain.Parent, error) {
	updated, err := r.dao.SetHidden(ctx, id, hidden)
	if err != nil {
		return domain.Parent{}, fmt.Errorf("r.dao.SetHidden -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *ParentRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *ParentRepository) FindCredentialByEmail(ctx context.Context, email string) (domain.ParentCredential, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.ParentCredential{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.credentialToDomain(found), nil
}

func (r *ParentRepository) FindCredentialByID(ctx context.Context, id uint) (domain.ParentCredential, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.ParentCredential{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.credentialToDomain(found), nil
}

func (r *ParentRepository) UpdatePassword(ctx context.Context, id uint, hash string, force bool, changedAt *time.Time) (domain.ParentCredential, error) {
	updated, err := r.dao.UpdatePassword(ctx, id, hash, force, changedAt)
	if err != nil {
		return domain.ParentCredential{}, fmt.Errorf("r.dao.UpdatePassword -> %w", err)
	}

	return r.credentialToDomain(updated), nil
}

func (r *ParentRepository) daoToDomain(p dao.Parent) domain.Parent {
	return domain.Parent{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		PupilID:   p.PupilID,
		IsHidden:  p.IsHidden,
		CreatedAt: p.CreatedAt,
	}
}

func (r *ParentRepository) daosToDomain(parents []dao.Parent) []domain.Parent {
	domainParents := make([]domain.Parent, len(parents))
	for i, p := range parents {
		domainParents[i] = r.daoToDomain(p)
	}
	return domainParents
}

func (r *ParentRepository) credentialToDomain(p dao.Parent) domain.ParentCredential {
	return domain.ParentCredential{
		ParentID:            p.ID,
		Email:               p.Email,
		PasswordHash:        p.Password,
		ForcePasswordChange: p.ForcePasswordChange,
		PasswordChangedAt:   p.PasswordChangedAt,
		TokenVersion:        p.TokenVersion,
	}
}
