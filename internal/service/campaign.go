package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/skarbek/skarbek-api/internal/domain"
	"github.com/skarbek/skarbek-api/internal/repository"
)

var (
	ErrCampaignNotFound = repository.ErrCampaignNotFound
	ErrCampaignClosed   = errors.New("campaign is closed")
)

type CampaignRepository interface {
	Create(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error)
	FindByID(ctx context.Context, id uint) (domain.Campaign, error)
	List(ctx context.Context, active *bool) ([]domain.Campaign, error)
	Update(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error)
	Close(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

type CampaignService struct {
	tx   Transactor
	repo CampaignRepository
}

func NewCampaignService(tx Transactor, repo CampaignRepository) *CampaignService {
	return &CampaignService{
		tx:   tx,
		repo: repo,
	}
}

func (s *CampaignService) CreateCampaign(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error) {
	campaign.IsClosed = false

	created, err := s.repo.Create(ctx, campaign)
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *CampaignService) GetCampaign(ctx context.Context, id uint) (domain.Campaign, error) {
	campaign, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return campaign, nil
}

// ListCampaigns never includes deleted campaigns. A nil active lists both
// active and inactive ones.
func (s *CampaignService) ListCampaigns(ctx context.Context, active *bool) ([]domain.Campaign, error) {
	campaigns, err := s.repo.List(ctx, active)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return campaigns, nil
}

// UpdateCampaign applies the allow-listed fields. Title and target amount are
// frozen once the campaign is closed.
func (s *CampaignService) UpdateCampaign(ctx context.Context, id uint, update domain.CampaignUpdate) (domain.Campaign, error) {
	var updated domain.Campaign

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		campaign, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("s.repo.FindByID -> %w", err)
		}

		if campaign.IsClosed && update.TouchesProtected() {
			return ErrCampaignClosed
		}

		update.Apply(&campaign)

		updated, err = s.repo.Update(ctx, campaign)
		if err != nil {
			return fmt.Errorf("s.repo.Update -> %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Campaign{}, err
	}

	return updated, nil
}

// CloseCampaign only flips the flag; contributions stay editable.
func (s *CampaignService) CloseCampaign(ctx context.Context, id uint) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Close(ctx, id); err != nil {
			return fmt.Errorf("s.repo.Close -> %w", err)
		}

		return nil
	})
}

func (s *CampaignService) DeleteCampaign(ctx context.Context, id uint) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("s.repo.Delete -> %w", err)
		}

		return nil
	})
}
