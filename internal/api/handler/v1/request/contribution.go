package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateContributionRequest struct {
	CampaignID     uint    `json:"campaign_id"`
	ParentID       uint    `json:"parent_id"`
	AmountExpected float64 `json:"amount_expected"`
}

func (req *CreateContributionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.CampaignID, validation.Required),
		validation.Field(&req.ParentID, validation.Required),
		validation.Field(&req.AmountExpected, validation.Min(0.0)),
	)
}

type MarkPaidRequest struct {
	CampaignID uint    `json:"campaign_id"`
	ParentID   uint    `json:"parent_id"`
	Amount     float64 `json:"amount"`
	Note       string  `json:"note"`
}

func (req *MarkPaidRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.CampaignID, validation.Required),
		validation.Field(&req.ParentID, validation.Required),
		validation.Field(&req.Amount, validation.Min(0.0)),
		validation.Field(&req.Note, validation.Length(0, 500)),
	)
}

type SubmitContributionRequest struct {
	CampaignID uint    `json:"campaign_id"`
	Amount     float64 `json:"amount"`
	Note       string  `json:"note"`
}

func (req *SubmitContributionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.CampaignID, validation.Required),
		validation.Field(&req.Amount, validation.Min(0.0)),
		validation.Field(&req.Note, validation.Length(0, 500)),
	)
}
