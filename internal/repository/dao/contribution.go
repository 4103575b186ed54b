package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrContributionNotFound = errors.New("contribution not found")
)

type Contribution struct {
	ID             uint    `gorm:"primaryKey"`
	CampaignID     uint    `gorm:"not null;uniqueIndex:idx_contributions_campaign_parent"`
	ParentID       uint    `gorm:"not null;uniqueIndex:idx_contributions_campaign_parent"`
	AmountExpected float64 `gorm:"not null"`
	AmountPaid     float64 `gorm:"not null"`
	Status         string  `gorm:"not null"`
	PaidAt         *time.Time
	Note           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ContributionDAO struct {
	db *gorm.DB
}

func NewContributionDAO(db *gorm.DB) *ContributionDAO {
	return &ContributionDAO{
		db: db,
	}
}

// InsertIfAbsent inserts contribution unless the (campaign, parent) pair
// already has one, and returns whichever row is stored for the pair. The
// unique index decides the winner when two transactions race.
func (d *ContributionDAO) InsertIfAbsent(ctx context.Context, contribution Contribution) (Contribution, bool, error) {
	result := conn(ctx, d.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "campaign_id"}, {Name: "parent_id"}},
			DoNothing: true,
		}).
		Create(&contribution)
	if result.Error != nil {
		return Contribution{}, false, result.Error
	}

	if result.RowsAffected == 1 {
		return contribution, true, nil
	}

	existing, err := d.FindByPair(ctx, contribution.CampaignID, contribution.ParentID)
	if err != nil {
		return Contribution{}, false, err
	}

	return existing, false, nil
}

func (d *ContributionDAO) FindByPair(ctx context.Context, campaignID, parentID uint) (Contribution, error) {
	var contribution Contribution

	result := conn(ctx, d.db).
		Where("campaign_id = ? AND parent_id = ?", campaignID, parentID).
		First(&contribution)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Contribution{}, ErrContributionNotFound
		}

		return Contribution{}, result.Error
	}

	return contribution, nil
}

func (d *ContributionDAO) FindByCampaignID(ctx context.Context, campaignID uint) ([]Contribution, error) {
	var contributions []Contribution

	result := conn(ctx, d.db).Where("campaign_id = ?", campaignID).Order("id asc").Find(&contributions)
	if result.Error != nil {
		return nil, result.Error
	}

	return contributions, nil
}

// FindByParentID leaves out contributions to soft-deleted campaigns.
func (d *ContributionDAO) FindByParentID(ctx context.Context, parentID uint) ([]Contribution, error) {
	var contributions []Contribution

	result := conn(ctx, d.db).
		Joins("JOIN campaigns ON campaigns.id = contributions.campaign_id AND campaigns.deleted_at IS NULL").
		Where("contributions.parent_id = ?", parentID).
		Order("contributions.id asc").
		Find(&contributions)
	if result.Error != nil {
		return nil, result.Error
	}

	return contributions, nil
}

// UpdatePayment overwrites the payment columns of an existing contribution.
func (d *ContributionDAO) UpdatePayment(ctx context.Context, contribution Contribution) (Contribution, error) {
	result := conn(ctx, d.db).Model(&Contribution{ID: contribution.ID}).
		Select("amount_paid", "status", "paid_at", "note").
		Updates(&contribution)
	if result.Error != nil {
		return Contribution{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Contribution{}, ErrContributionNotFound
	}

	var updated Contribution
	if err := conn(ctx, d.db).First(&updated, contribution.ID).Error; err != nil {
		return Contribution{}, err
	}

	return updated, nil
}

func (d *ContributionDAO) CountByPair(ctx context.Context, campaignID, parentID uint) (int64, error) {
	var count int64

	result := conn(ctx, d.db).Model(&Contribution{}).
		Where("campaign_id = ? AND parent_id = ?", campaignID, parentID).
		Count(&count)

	return count, result.Error
}
