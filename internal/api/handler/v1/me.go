package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skarbek/skarbek-api/internal/api/handler/v1/request"
	"github.com/skarbek/skarbek-api/internal/api/handler/v1/response"
	"github.com/skarbek/skarbek-api/internal/api/middleware"
	"github.com/skarbek/skarbek-api/internal/domain"
	"github.com/skarbek/skarbek-api/internal/service"
)

type ParentProfileService interface {
	GetParent(ctx context.Context, id uint) (domain.Parent, error)
}

// MeHandler serves the signed-in parent. Its routes sit behind the password
// change gate.
type MeHandler struct {
	parents       ParentProfileService
	contributions ContributionService
}

func NewMeHandler(parents ParentProfileService, contributions ContributionService) *MeHandler {
	return &MeHandler{
		parents:       parents,
		contributions: contributions,
	}
}

func currentParent(ctx *gin.Context) (uint, *response.Err) {
	cred, ok := middleware.CredentialFromContext(ctx)
	if !ok {
		return 0, response.ErrUnauthorized(service.ErrInvalidToken)
	}

	return cred.ParentID, nil
}

// HandleMe godoc
// @Summary      Profile of the signed-in parent
// @Tags         parents
// @Produce      json
// @Success      200  {object}  response.ParentResponse
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /parents/me [get]
// @Security BearerAuth
func (h *MeHandler) HandleMe(ctx *gin.Context) {
	parentID, respErr := currentParent(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	parent, err := h.parents.GetParent(ctx.Request.Context(), parentID)
	if err != nil {
		if errors.Is(err, service.ErrParentNotFound) {
			response.RenderErr(ctx, response.ErrUnauthorized(service.ErrInvalidToken))
			return
		}

		err = fmt.Errorf("v1.HandleMe -> h.parents.GetParent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewParentResponse(parent))
}

// HandleMyCampaigns godoc
// @Summary      Active campaigns with the parent's contribution
// @Tags         parents
// @Produce      json
// @Success      200  {array}   domain.ParentCampaign
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /parents/campaigns [get]
// @Security BearerAuth
func (h *MeHandler) HandleMyCampaigns(ctx *gin.Context) {
	parentID, respErr := currentParent(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	campaigns, err := h.contributions.ParentCampaigns(ctx.Request.Context(), parentID)
	if err != nil {
		err = fmt.Errorf("v1.HandleMyCampaigns -> h.contributions.ParentCampaigns -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, campaigns)
}

// HandleMyContributions godoc
// @Summary      Contributions of the signed-in parent
// @Tags         parents
// @Produce      json
// @Success      200  {array}   domain.Contribution
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /parents/contributions [get]
// @Security BearerAuth
func (h *MeHandler) HandleMyContributions(ctx *gin.Context) {
	parentID, respErr := currentParent(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	contributions, err := h.contributions.ListForParent(ctx.Request.Context(), parentID)
	if err != nil {
		err = fmt.Errorf("v1.HandleMyContributions -> h.contributions.ListForParent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, contributions)
}

// HandleSubmitContribution godoc
// @Summary      Declare a payment for a campaign
// @Description  The contribution stays pending until an admin marks it paid.
// @Tags         parents
// @Accept       json
// @Produce      json
// @Param        request   body      request.SubmitContributionRequest true "request body"
// @Success      201  {object}  response.SubmittedContributionResponse
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /parents/contributions [post]
// @Security BearerAuth
func (h *MeHandler) HandleSubmitContribution(ctx *gin.Context) {
	parentID, respErr := currentParent(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.SubmitContributionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	contribution, err := h.contributions.SubmitContribution(ctx.Request.Context(), parentID, req.CampaignID, req.Amount, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCampaignNotFound):
			response.RenderErr(ctx, response.ErrNotFound("campaign", "ID", req.CampaignID))
		case errors.Is(err, service.ErrContributionPaid):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleSubmitContribution -> h.contributions.SubmitContribution -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, response.SubmittedContributionResponse{
		ID:     contribution.ID,
		Status: contribution.Status,
	})
}
