package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/skarbek/skarbek-api/internal/domain"
)

type CreateCampaignRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	TargetAmount float64    `json:"target_amount"`
	DueDate      *time.Time `json:"due_date"`
	Active       *bool      `json:"active"`
}

func (req *CreateCampaignRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.TargetAmount, validation.Min(0.0)),
	)
}

func (req *CreateCampaignRequest) ToDomain() domain.Campaign {
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	return domain.Campaign{
		Title:        req.Title,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		DueDate:      req.DueDate,
		Active:       active,
	}
}

// UpdateCampaignRequest lists the editable fields. Keys outside this set are
// dropped by the JSON decoder; a null value counts as absent.
type UpdateCampaignRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	TargetAmount *float64   `json:"target_amount"`
	DueDate      *time.Time `json:"due_date"`
	Active       *bool      `json:"active"`
}

func (req *UpdateCampaignRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.TargetAmount, validation.Min(0.0)),
	)
}

func (req *UpdateCampaignRequest) ToDomain() domain.CampaignUpdate {
	return domain.CampaignUpdate{
		Title:        req.Title,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		DueDate:      req.DueDate,
		Active:       req.Active,
	}
}

type ListCampaignsQuery struct {
	Active *bool `form:"active"`
}

type RosterQuery struct {
	IncludeHidden bool `form:"include_hidden"`
}

// StatusQuery takes the pupil ID as either pupil_id or pupilId.
type StatusQuery struct {
	Email        string `form:"email"`
	PupilID      string `form:"pupil_id"`
	PupilIDCamel string `form:"pupilId"`
}

func (q StatusQuery) Pupil() string {
	if q.PupilID != "" {
		return q.PupilID
	}

	return q.PupilIDCamel
}
