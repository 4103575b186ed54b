package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/skarbek/skarbek-api/internal/domain"
	"github.com/skarbek/skarbek-api/internal/repository/dao"
)

var (
	ErrCampaignNotFound = dao.ErrCampaignNotFound
)

type CampaignDAO interface {
	Insert(ctx context.Context, campaign dao.Campaign) (dao.Campaign, error)
	FindByID(ctx context.Context, id uint) (dao.Campaign, error)
	List(ctx context.Context, active *bool) ([]dao.Campaign, error)
	Update(ctx context.Context, campaign dao.Campaign) (dao.Campaign, error)
	Close(ctx context.Context, id uint) error
	SoftDelete(ctx context.Context, id uint) error
}

type CampaignRepository struct {
	dao CampaignDAO
}

func NewCampaignRepository(dao CampaignDAO) *CampaignRepository {
	return &CampaignRepository{
		dao: dao,
	}
}

func (r *CampaignRepository) Create(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(campaign))
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *CampaignRepository) FindByID(ctx context.Context, id uint) (domain.Campaign, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *CampaignRepository) List(ctx context.Context, active *bool) ([]domain.Campaign, error) {
	found, err := r.dao.List(ctx, active)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	campaigns := make([]domain.Campaign, len(found))
	for i, c := range found {
		campaigns[i] = r.daoToDomain(c)
	}

	return campaigns, nil
}

func (r *CampaignRepository) Update(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(campaign))
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *CampaignRepository) Close(ctx context.Context, id uint) error {
	if err := r.dao.Close(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Close -> %w", err)
	}

	return nil
}

func (r *CampaignRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.SoftDelete -> %w", err)
	}

	return nil
}

func (r *CampaignRepository) domainToDao(c domain.Campaign) dao.Campaign {
	return dao.Campaign{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		TargetAmount: c.TargetAmount,
		DueDate:      c.DueDate,
		Active:       c.Active,
		IsClosed:     c.IsClosed,
		CreatedAt:    c.CreatedAt,
	}
}

func (r *CampaignRepository) daoToDomain(c dao.Campaign) domain.Campaign {
	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		deletedAt = &c.DeletedAt.Time
	}

	return domain.Campaign{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		TargetAmount: c.TargetAmount,
		DueDate:      c.DueDate,
		Active:       c.Active,
		IsClosed:     c.IsClosed,
		DeletedAt:    deletedAt,
		CreatedAt:    c.CreatedAt,
	}
}
