package repository

import (
	"context"
	"fmt"

	"github.com/skarbek/skarbek-api/internal/domain"
	"github.com/skarbek/skarbek-api/internal/repository/dao"
)

var (
	ErrContributionNotFound = dao.ErrContributionNotFound
)

type ContributionDAO interface {
	InsertIfAbsent(ctx context.Context, contribution dao.Contribution) (dao.Contribution, bool, error)
	FindByPair(ctx context.Context, campaignID, parentID uint) (dao.Contribution, error)
	FindByCampaignID(ctx context.Context, campaignID uint) ([]dao.Contribution, error)
	FindByParentID(ctx context.Context, parentID uint) ([]dao.Contribution, error)
	UpdatePayment(ctx context.Context, contribution dao.Contribution) (dao.Contribution, error)
	CountByPair(ctx context.Context, campaignID, parentID uint) (int64, error)
}

type ContributionRepository struct {
	dao ContributionDAO
}

func NewContributionRepository(dao ContributionDAO) *ContributionRepository {
	return &ContributionRepository{
		dao: dao,
	}
}

// CreateIfAbsent returns the stored contribution for the pair and whether
// this call created it.
func (r *ContributionRepository) CreateIfAbsent(ctx context.Context, contribution domain.Contribution) (domain.Contribution, bool, error) {
	stored, created, err := r.dao.InsertIfAbsent(ctx, r.domainToDao(contribution))
	if err != nil {
		return domain.Contribution{}, false, fmt.Errorf("r.dao.InsertIfAbsent -> %w", err)
	}

	return r.daoToDomain(stored), created, nil
}

func (r *ContributionRepository) FindByPair(ctx context.Context, campaignID, parentID uint) (domain.Contribution, error) {
	found, err := r.dao.FindByPair(ctx, campaignID, parentID)
	if err != nil {
		return domain.Contribution{}, fmt.Errorf("r.dao.FindByPair -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ContributionRepository) FindByCampaignID(ctx context.Context, campaignID uint) ([]domain.Contribution, error) {
	found, err := r.dao.FindByCampaignID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByCampaignID -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *ContributionRepository) FindByParentID(ctx context.Context, parentID uint) ([]domain.Contribution, error) {
	found, err := r.dao.FindByParentID(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByParentID -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *ContributionRepository) UpdatePayment(ctx context.Context, contribution domain.Contribution) (domain.Contribution, error) {
	updated, err := r.dao.UpdatePayment(ctx, r.domainToDao(contribution))
	if err != nil {
		return domain.Contribution{}, fmt.Errorf("r.dao.UpdatePayment -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *ContributionRepository) CountByPair(ctx context.Context, campaignID, parentID uint) (int64, error) {
	count, err := r.dao.CountByPair(ctx, campaignID, parentID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountByPair -> %w", err)
	}

	return count, nil
}

func (r *ContributionRepository) domainToDao(c domain.Contribution) dao.Contribution {
	return dao.Contribution{
		ID:             c.ID,
		CampaignID:     c.CampaignID,
		ParentID:       c.ParentID,
		AmountExpected: c.AmountExpected,
		AmountPaid:     c.AmountPaid,
		Status:         string(c.Status),
		PaidAt:         c.PaidAt,
		Note:           c.Note,
	}
}

func (r *ContributionRepository) daoToDomain(c dao.Contribution) domain.Contribution {
	return domain.Contribution{
		ID:             c.ID,
		CampaignID:     c.CampaignID,
		ParentID:       c.ParentID,
		AmountExpected: c.AmountExpected,
		AmountPaid:     c.AmountPaid,
		Status:         domain.ContributionStatus(c.Status),
		PaidAt:         c.PaidAt,
		Note:           c.Note,
	}
}

func (r *ContributionRepository) daosToDomain(contributions []dao.Contribution) []domain.Contribution {
	domainContributions := make([]domain.Contribution, len(contributions))
	for i, c := range contributions {
		domainContributions[i] = r.daoToDomain(c)
	}
	return domainContributions
}
