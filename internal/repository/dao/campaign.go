package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
)

type Campaign struct {
	ID           uint   `gorm:"primaryKey"`
	Title        string `gorm:"not null"`
	Description  string
	TargetAmount float64 `gorm:"not null"`
	DueDate      *time.Time
	Active       bool `gorm:"not null"`
	IsClosed     bool `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

type CampaignDAO struct {
	db *gorm.DB
}

func NewCampaignDAO(db *gorm.DB) *CampaignDAO {
	return &CampaignDAO{
		db: db,
	}
}

func (d *CampaignDAO) Insert(ctx context.Context, campaign Campaign) (Campaign, error) {
	if err := conn(ctx, d.db).Create(&campaign).Error; err != nil {
		return Campaign{}, err
	}

	return campaign, nil
}

// FindByID never returns soft-deleted campaigns.
func (d *CampaignDAO) FindByID(ctx context.Context, id uint) (Campaign, error) {
	var campaign Campaign

	result := conn(ctx, d.db).First(&campaign, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Campaign{}, ErrCampaignNotFound
		}

		return Campaign{}, result.Error
	}

	return campaign, nil
}

// List returns non-deleted campaigns in insertion order, optionally filtered
// by the active flag.
func (d *CampaignDAO) List(ctx context.Context, active *bool) ([]Campaign, error) {
	var campaigns []Campaign

	query := conn(ctx, d.db).Order("id asc")
	if active != nil {
		query = query.Where("active = ?", *active)
	}

	if err := query.Find(&campaigns).Error; err != nil {
		return nil, err
	}

	return campaigns, nil
}

// Update writes the editable columns of campaign, zero values included.
func (d *CampaignDAO) Update(ctx context.Context, campaign Campaign) (Campaign, error) {
	result := conn(ctx, d.db).Model(&Campaign{ID: campaign.ID}).
		Select("title", "description", "target_amount", "due_date", "active").
		Updates(&campaign)
	if result.Error != nil {
		return Campaign{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Campaign{}, ErrCampaignNotFound
	}

	return d.FindByID(ctx, campaign.ID)
}

func (d *CampaignDAO) Close(ctx context.Context, id uint) error {
	result := conn(ctx, d.db).Model(&Campaign{ID: id}).Update("is_closed", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCampaignNotFound
	}

	return nil
}

func (d *CampaignDAO) SoftDelete(ctx context.Context, id uint) error {
	result := conn(ctx, d.db).Delete(&Campaign{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCampaignNotFound
	}

	return nil
}
