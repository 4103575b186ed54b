package service

import (
	"context"
	"fmt"

	"github.com/skarbek/skarbek-api/internal/domain"
)

type RosterService struct {
	tx            Transactor
	campaigns     CampaignFinder
	parents       ParentFinder
	contributions ContributionRepository
}

func NewRosterService(tx Transactor, campaigns CampaignFinder, parents ParentFinder, contributions ContributionRepository) *RosterService {
	return &RosterService{
		tx:            tx,
		campaigns:     campaigns,
		parents:       parents,
		contributions: contributions,
	}
}

// BuildRoster left-joins every listed parent to its contribution for the
// campaign. Rows follow parent insertion order; hidden parents are left out
// unless includeHidden is set.
func (s *RosterService) BuildRoster(ctx context.Context, campaignID uint, includeHidden bool) (domain.Roster, error) {
	var roster domain.Roster

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		campaign, err := s.campaigns.FindByID(ctx, campaignID)
		if err != nil {
			return fmt.Errorf("s.campaigns.FindByID -> %w", err)
		}

		parents, err := s.parents.List(ctx, includeHidden)
		if err != nil {
			return fmt.Errorf("s.parents.List -> %w", err)
		}

		contributions, err := s.contributions.FindByCampaignID(ctx, campaignID)
		if err != nil {
			return fmt.Errorf("s.contributions.FindByCampaignID -> %w", err)
		}

		byParent := make(map[uint]domain.Contribution, len(contributions))
		for _, c := range contributions {
			byParent[c.ParentID] = c
		}

		rows := make([]domain.RosterRow, 0, len(parents))
		for _, p := range parents {
			row := domain.RosterRow{
				ParentID:    p.ID,
				ParentName:  p.Name,
				ParentEmail: p.Email,
			}
			if c, ok := byParent[p.ID]; ok {
				c := c
				row.Contribution = &c
			}
			rows = append(rows, row)
		}

		roster = domain.Roster{
			Campaign: campaign,
			Rows:     rows,
		}

		return nil
	})
	if err != nil {
		return domain.Roster{}, err
	}

	return roster, nil
}
