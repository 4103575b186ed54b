package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skarbek/skarbek-api/internal/domain"
	"github.com/skarbek/skarbek-api/internal/repository"
)

var (
	ErrContributionNotFound = repository.ErrContributionNotFound
	ErrContributionPaid     = errors.New("contribution is already marked paid")
	ErrMissingLookupKey     = errors.New("email or pupil_id required")
)

type CampaignFinder interface {
	FindByID(ctx context.Context, id uint) (domain.Campaign, error)
	List(ctx context.Context, active *bool) ([]domain.Campaign, error)
}

type ParentFinder interface {
	FindByID(ctx context.Context, id uint) (domain.Parent, error)
	FindByEmail(ctx context.Context, email string) (domain.Parent, error)
	FindByPupilID(ctx context.Context, pupilID string) (domain.Parent, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]domain.Parent, error)
	List(ctx context.Context, includeHidden bool) ([]domain.Parent, error)
}

type ContributionRepository interface {
	CreateIfAbsent(ctx context.Context, contribution domain.Contribution) (domain.Contribution, bool, error)
	FindByPair(ctx context.Context, campaignID, parentID uint) (domain.Contribution, error)
	FindByCampaignID(ctx context.Context, campaignID uint) ([]domain.Contribution, error)
	FindByParentID(ctx context.Context, parentID uint) ([]domain.Contribution, error)
	UpdatePayment(ctx context.Context, contribution domain.Contribution) (domain.Contribution, error)
}

type ContributionService struct {
	tx        Transactor
	campaigns CampaignFinder
	parents   ParentFinder
	repo      ContributionRepository
}

func NewContributionService(tx Transactor, campaigns CampaignFinder, parents ParentFinder, repo ContributionRepository) *ContributionService {
	return &ContributionService{
		tx:        tx,
		campaigns: campaigns,
		parents:   parents,
		repo:      repo,
	}
}

// CreateContribution is idempotent per (campaign, parent): when the pair
// already has a contribution it is returned unchanged. The boolean reports
// whether this call created the row.
func (s *ContributionService) CreateContribution(ctx context.Context, campaignID, parentID uint, amountExpected float64) (domain.Contribution, bool, error) {
	var (
		contribution domain.Contribution
		created      bool
	)

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		contribution, created, err = s.createIfAbsent(ctx, campaignID, parentID, amountExpected)
		return err
	})
	if err != nil {
		return domain.Contribution{}, false, err
	}

	return contribution, created, nil
}

func (s *ContributionService) createIfAbsent(ctx context.Context, campaignID, parentID uint, amountExpected float64) (domain.Contribution, bool, error) {
	if _, err := s.campaigns.FindByID(ctx, campaignID); err != nil {
		return domain.Contribution{}, false, fmt.Errorf("s.campaigns.FindByID -> %w", err)
	}

	if _, err := s.parents.FindByID(ctx, parentID); err != nil {
		return domain.Contribution{}, false, fmt.Errorf("s.parents.FindByID -> %w", err)
	}

	contribution, created, err := s.repo.CreateIfAbsent(ctx, domain.Contribution{
		CampaignID:     campaignID,
		ParentID:       parentID,
		AmountExpected: amountExpected,
		AmountPaid:     0,
		Status:         domain.ContributionPending,
	})
	if err != nil {
		return domain.Contribution{}, false, fmt.Errorf("s.repo.CreateIfAbsent -> %w", err)
	}

	return contribution, created, nil
}

// MarkPaid overwrites the payment of an existing contribution. Calling it
// twice keeps only the latest amount.
func (s *ContributionService) MarkPaid(ctx context.Context, campaignID, parentID uint, amount float64, note string) (domain.Contribution, error) {
	var updated domain.Contribution

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.campaigns.FindByID(ctx, campaignID); err != nil {
			return fmt.Errorf("s.campaigns.FindByID -> %w", err)
		}

		contribution, err := s.repo.FindByPair(ctx, campaignID, parentID)
		if err != nil {
			return fmt.Errorf("s.repo.FindByPair -> %w", err)
		}

		contribution.MarkPaid(amount, note, time.Now().UTC())

		updated, err = s.repo.UpdatePayment(ctx, contribution)
		if err != nil {
			return fmt.Errorf("s.repo.UpdatePayment -> %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Contribution{}, err
	}

	return updated, nil
}

// SubmitContribution records the amount a parent reports having paid. The
// contribution stays pending until an admin marks it paid.
func (s *ContributionService) SubmitContribution(ctx context.Context, parentID, campaignID uint, amount float64, note string) (domain.Contribution, error) {
	var submitted domain.Contribution

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		contribution, _, err := s.createIfAbsent(ctx, campaignID, parentID, 0)
		if err != nil {
			return err
		}

		if contribution.IsPaid() {
			return ErrContributionPaid
		}

		contribution.Declare(amount, note)

		submitted, err = s.repo.UpdatePayment(ctx, contribution)
		if err != nil {
			return fmt.Errorf("s.repo.UpdatePayment -> %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Contribution{}, err
	}

	return submitted, nil
}

func (s *ContributionService) ListForParent(ctx context.Context, parentID uint) ([]domain.Contribution, error) {
	contributions, err := s.repo.FindByParentID(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByParentID -> %w", err)
	}

	return contributions, nil
}

// ParentCampaigns lists the active campaigns with the parent's contribution
// to each, if any.
func (s *ContributionService) ParentCampaigns(ctx context.Context, parentID uint) ([]domain.ParentCampaign, error) {
	active := true

	campaigns, err := s.campaigns.List(ctx, &active)
	if err != nil {
		return nil, fmt.Errorf("s.campaigns.List -> %w", err)
	}

	contributions, err := s.repo.FindByParentID(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByParentID -> %w", err)
	}

	byCampaign := make(map[uint]domain.Contribution, len(contributions))
	for _, c := range contributions {
		byCampaign[c.CampaignID] = c
	}

	result := make([]domain.ParentCampaign, 0, len(campaigns))
	for _, campaign := range campaigns {
		item := domain.ParentCampaign{Campaign: campaign}
		if c, ok := byCampaign[campaign.ID]; ok {
			c := c
			item.Contribution = &c
		}
		result = append(result, item)
	}

	return result, nil
}

// Overview groups the contributions of every active campaign.
func (s *ContributionService) Overview(ctx context.Context) ([]domain.CampaignContributions, error) {
	active := true

	campaigns, err := s.campaigns.List(ctx, &active)
	if err != nil {
		return nil, fmt.Errorf("s.campaigns.List -> %w", err)
	}

	result := make([]domain.CampaignContributions, 0, len(campaigns))
	for _, campaign := range campaigns {
		contributions, err := s.repo.FindByCampaignID(ctx, campaign.ID)
		if err != nil {
			return nil, fmt.Errorf("s.repo.FindByCampaignID -> %w", err)
		}

		ids := make([]uint, len(contributions))
		for i, c := range contributions {
			ids[i] = c.ParentID
		}

		parents, err := s.parents.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("s.parents.FindByIDs -> %w", err)
		}

		group := domain.CampaignContributions{
			Campaign:      campaign,
			Contributions: make([]domain.ContributionWithParent, len(contributions)),
		}
		for i, c := range contributions {
			parent := parents[c.ParentID]
			group.Contributions[i] = domain.ContributionWithParent{
				Contribution: c,
				ParentName:   parent.Name,
				ParentEmail:  parent.Email,
			}
		}

		result = append(result, group)
	}

	return result, nil
}

const (
	StatusParentNotFound = "not_found"
	StatusNoRecord       = "no_record"
)

type ContributionStatus struct {
	Status         string
	AmountExpected *float64
	AmountPaid     *float64
}

// Status looks up a parent's contribution to a campaign by email, or by
// pupil id when no email is given. Deleted campaigns are not found.
func (s *ContributionService) Status(ctx context.Context, campaignID uint, email, pupilID string) (ContributionStatus, error) {
	if email == "" && pupilID == "" {
		return ContributionStatus{}, ErrMissingLookupKey
	}

	if _, err := s.campaigns.FindByID(ctx, campaignID); err != nil {
		return ContributionStatus{}, fmt.Errorf("s.campaigns.FindByID -> %w", err)
	}

	var (
		parent domain.Parent
		err    error
	)
	if email != "" {
		parent, err = s.parents.FindByEmail(ctx, email)
	} else {
		parent, err = s.parents.FindByPupilID(ctx, pupilID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrParentNotFound) {
			return ContributionStatus{Status: StatusParentNotFound}, nil
		}
		return ContributionStatus{}, fmt.Errorf("s.parents.Find -> %w", err)
	}

	contribution, err := s.repo.FindByPair(ctx, campaignID, parent.ID)
	if err != nil {
		if errors.Is(err, repository.ErrContributionNotFound) {
			return ContributionStatus{Status: StatusNoRecord}, nil
		}
		return ContributionStatus{}, fmt.Errorf("s.repo.FindByPair -> %w", err)
	}

	return ContributionStatus{
		Status:         string(contribution.Status),
		AmountExpected: &contribution.AmountExpected,
		AmountPaid:     &contribution.AmountPaid,
	}, nil
}
