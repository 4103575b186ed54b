package domain

import "time"

type Campaign struct {
	ID           uint       `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	TargetAmount float64    `json:"target_amount"`
	DueDate      *time.Time `json:"due_date"`
	Active       bool       `json:"active"`
	IsClosed     bool       `json:"is_closed"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// CampaignUpdate carries the allow-listed campaign fields. A nil field is
// left untouched.
type CampaignUpdate struct {
	Title        *string
	Description  *string
	TargetAmount *float64
	DueDate      *time.Time
	Active       *bool
}

// TouchesProtected reports whether the update changes a field that is frozen
// once the campaign is closed.
func (u CampaignUpdate) TouchesProtected() bool {
	return u.Title != nil || u.TargetAmount != nil
}

// Apply copies the set fields of u onto c.
func (u CampaignUpdate) Apply(c *Campaign) {
	if u.Title != nil {
		c.Title = *u.Title
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.TargetAmount != nil {
		c.TargetAmount = *u.TargetAmount
	}
	if u.DueDate != nil {
		c.DueDate = u.DueDate
	}
	if u.Active != nil {
		c.Active = *u.Active
	}
}
