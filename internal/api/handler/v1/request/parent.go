package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type CreateParentRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	PupilID *string `json:"pupil_id"`
}

func (req *CreateParentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Length(0, 100)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.PupilID, validation.NilOrNotEmpty, validation.Length(1, 50)),
	)
}

// UpdateParentRequest keeps the stored value for every empty field.
type UpdateParentRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (req *UpdateParentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Length(0, 100)),
		validation.Field(&req.Email, is.Email),
	)
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

func (req *ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.NewPassword, validation.Required),
	)
}

type ListParentsQuery struct {
	IncludeHidden bool `form:"include_hidden"`
}
