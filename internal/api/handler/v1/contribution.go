package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skarbek/skarbek-api/internal/api/handler/v1/request"
	"github.com/skarbek/skarbek-api/internal/api/handler/v1/response"
	"github.com/skarbek/skarbek-api/internal/domain"
	"github.com/skarbek/skarbek-api/internal/service"
)

type ContributionService interface {
	CreateContribution(ctx context.Context, campaignID, parentID uint, amountExpected float64) (domain.Contribution, bool, error)
	MarkPaid(ctx context.Context, campaignID, parentID uint, amount float64, note string) (domain.Contribution, error)
	SubmitContribution(ctx context.Context, parentID, campaignID uint, amount float64, note string) (domain.Contribution, error)
	ListForParent(ctx context.Context, parentID uint) ([]domain.Contribution, error)
	ParentCampaigns(ctx context.Context, parentID uint) ([]domain.ParentCampaign, error)
	Overview(ctx context.Context) ([]domain.CampaignContributions, error)
	Status(ctx context.Context, campaignID uint, email, pupilID string) (service.ContributionStatus, error)
}

type ContributionHandler struct {
	svc ContributionService
}

func NewContributionHandler(svc ContributionService) *ContributionHandler {
	return &ContributionHandler{
		svc: svc,
	}
}

// HandleCreateContribution godoc
// @Summary      Create the contribution of a parent to a campaign
// @Description  Idempotent per (campaign_id, parent_id): an existing contribution is returned unchanged with status 200.
// @Tags         admin-contributions
// @Accept       json
// @Produce      json
// @Param        request   body      request.CreateContributionRequest true "request body"
// @Success      200  {object}  domain.Contribution
// @Success      201  {object}  domain.Contribution
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/contributions [post]
// @Security BearerAuth
func (h *ContributionHandler) HandleCreateContribution(ctx *gin.Context) {
	var req request.CreateContributionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	contribution, created, err := h.svc.CreateContribution(ctx.Request.Context(), req.CampaignID, req.ParentID, req.AmountExpected)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCampaignNotFound):
			response.RenderErr(ctx, response.ErrNotFound("campaign", "ID", req.CampaignID))
		case errors.Is(err, service.ErrParentNotFound):
			response.RenderErr(ctx, response.ErrNotFound("parent", "ID", req.ParentID))
		default:
			err = fmt.Errorf("v1.HandleCreateContribution -> h.svc.CreateContribution -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	ctx.JSON(status, contribution)
}

// HandleMarkPaid godoc
// @Summary      Record the payment of a contribution
// @Description  Overwrites amount_paid and note; no payment history is kept.
// @Tags         admin-contributions
// @Accept       json
// @Produce      json
// @Param        request   body      request.MarkPaidRequest true "request body"
// @Success      200  {object}  domain.Contribution
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/contributions/mark-paid [post]
// @Security BearerAuth
func (h *ContributionHandler) HandleMarkPaid(ctx *gin.Context) {
	var req request.MarkPaidRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	contribution, err := h.svc.MarkPaid(ctx.Request.Context(), req.CampaignID, req.ParentID, req.Amount, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCampaignNotFound):
			response.RenderErr(ctx, response.ErrNotFound("campaign", "ID", req.CampaignID))
		case errors.Is(err, service.ErrContributionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("contribution", "campaign/parent", fmt.Sprintf("%d/%d", req.CampaignID, req.ParentID)))
		default:
			err = fmt.Errorf("v1.HandleMarkPaid -> h.svc.MarkPaid -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, contribution)
}

// HandleOverview godoc
// @Summary      Contributions of every active campaign
// @Tags         admin-contributions
// @Produce      json
// @Success      200  {array}   response.OverviewEntry
// @Failure      500  {object}  response.Err
// @Router       /admin/contributions [get]
// @Security BearerAuth
func (h *ContributionHandler) HandleOverview(ctx *gin.Context) {
	groups, err := h.svc.Overview(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleOverview -> h.svc.Overview -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewOverview(groups))
}

// HandleContributionStatus godoc
// @Summary      Look up a contribution status by parent email or pupil ID
// @Description  status is not_found when no parent matches and no_record when the parent has no contribution.
// @Tags         campaigns
// @Produce      json
// @Param        campaignID  path      int     true   "campaign ID"
// @Param        email       query     string  false  "parent email"
// @Param        pupil_id    query     string  false  "pupil ID"
// @Param        pupilId     query     string  false  "pupil ID (alternate key)"
// @Success      200  {object}  response.ContributionStatusResponse
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /campaigns/{campaignID}/status [get]
func (h *ContributionHandler) HandleContributionStatus(ctx *gin.Context) {
	id, respErr := uintParam(ctx, "campaignID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var query request.StatusQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	status, err := h.svc.Status(ctx.Request.Context(), id, query.Email, query.Pupil())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingLookupKey):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrCampaignNotFound):
			response.RenderErr(ctx, response.ErrNotFound("campaign", "ID", id))
		default:
			err = fmt.Errorf("v1.HandleContributionStatus -> h.svc.Status -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.ContributionStatusResponse{
		Status:         status.Status,
		AmountExpected: status.AmountExpected,
		AmountPaid:     status.AmountPaid,
	})
}
