package domain

import (
	"time"
)

type ContributionStatus string

const (
	ContributionPending ContributionStatus = "pending"
	ContributionPaid    ContributionStatus = "paid"
)

type Contribution struct {
	ID             uint               `json:"id"`
	CampaignID     uint               `json:"campaign_id"`
	ParentID       uint               `json:"parent_id"`
	AmountExpected float64            `json:"amount_expected"`
	AmountPaid     float64            `json:"amount_paid"`
	Status         ContributionStatus `json:"status"`
	PaidAt         *time.Time         `json:"paid_at"`
	Note           string             `json:"note"`
}

// MarkPaid overwrites the payment fields. No payment history is kept.
func (c *Contribution) MarkPaid(amount float64, note string, at time.Time) {
	c.AmountPaid = amount
	c.Status = ContributionPaid
	c.PaidAt = &at
	c.Note = note
}

// Declare records an amount reported by the parent. The status stays as is
// until an admin marks the contribution paid.
func (c *Contribution) Declare(amount float64, note string) {
	c.AmountPaid = amount
	c.Note = note
}

func (c *Contribution) IsPaid() bool {
	return c.Status == ContributionPaid
}
