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

type CampaignService interface {
	CreateCampaign(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error)
	ListCampaigns(ctx context.Context, active *bool) ([]domain.Campaign, error)
	UpdateCampaign(ctx context.Context, id uint, update domain.CampaignUpdate) (domain.Campaign, error)
	CloseCampaign(ctx context.Context, id uint) error
	DeleteCampaign(ctx context.Context, id uint) error
}

type RosterService interface {
	BuildRoster(ctx context.Context, campaignID uint, includeHidden bool) (domain.Roster, error)
}

type CampaignHandler struct {
	svc    CampaignService
	roster RosterService
}

func NewCampaignHandler(svc CampaignService, roster RosterService) *CampaignHandler {
	return &CampaignHandler{
		svc:    svc,
		roster: roster,
	}
}

// HandleCreateCampaign godoc
// @Summary      Create a campaign
// @Tags         admin-campaigns
// @Accept       json
// @Produce      json
// @Param        request   body      request.CreateCampaignRequest true "request body"
// @Success      201  {object}  domain.Campaign
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/campaigns [post]
// @Security BearerAuth
func (h *CampaignHandler) HandleCreateCampaign(ctx *gin.Context) {
	var req request.CreateCampaignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	campaign, err := h.svc.CreateCampaign(ctx.Request.Context(), req.ToDomain())
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateCampaign -> h.svc.CreateCampaign -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, campaign)
}

// HandleListCampaigns godoc
// @Summary      List all campaigns that are not deleted
// @Tags         admin-campaigns
// @Produce      json
// @Success      200  {array}   domain.Campaign
// @Failure      500  {object}  response.Err
// @Router       /admin/campaigns [get]
// @Security BearerAuth
func (h *CampaignHandler) HandleListCampaigns(ctx *gin.Context) {
	campaigns, err := h.svc.ListCampaigns(ctx.Request.Context(), nil)
	if err != nil {
		err = fmt.Errorf("v1.HandleListCampaigns -> h.svc.ListCampaigns -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, campaigns)
}

// HandleListPublicCampaigns godoc
// @Summary      List campaigns
// @Description  Only active campaigns unless active=false is given.
// @Tags         campaigns
// @Produce      json
// @Param        active  query     bool  false  "filter on the active flag (default true)"
// @Success      200  {array}   domain.Campaign
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /campaigns [get]
func (h *CampaignHandler) HandleListPublicCampaigns(ctx *gin.Context) {
	var query request.ListCampaignsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	active := true
	if query.Active != nil {
		active = *query.Active
	}

	campaigns, err := h.svc.ListCampaigns(ctx.Request.Context(), &active)
	if err != nil {
		err = fmt.Errorf("v1.HandleListPublicCampaigns -> h.svc.ListCampaigns -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, campaigns)
}

// HandleUpdateCampaign godoc
// @Summary      Update a campaign
// @Description  Only title, description, target_amount, due_date and active are applied. Title and target_amount are frozen once the campaign is closed.
// @Tags         admin-campaigns
// @Accept       json
// @Produce      json
// @Param        campaignID  path      int  true  "campaign ID"
// @Param        request     body      request.UpdateCampaignRequest true "request body"
// @Success      200  {object}  domain.Campaign
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/campaigns/{campaignID} [put]
// @Security BearerAuth
func (h *CampaignHandler) HandleUpdateCampaign(ctx *gin.Context) {
	id, respErr := uintParam(ctx, "campaignID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateCampaignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	campaign, err := h.svc.UpdateCampaign(ctx.Request.Context(), id, req.ToDomain())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCampaignNotFound):
			response.RenderErr(ctx, response.ErrNotFound("campaign", "ID", id))
		case errors.Is(err, service.ErrCampaignClosed):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleUpdateCampaign -> h.svc.UpdateCampaign -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, campaign)
}

// HandleCloseCampaign godoc
// @Summary      Close a campaign
// @Tags         admin-campaigns
// @Produce      json
// @Param        campaignID  path      int  true  "campaign ID"
// @Success      200  {object}  response.StatusResponse
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/campaigns/{campaignID}/close [post]
// @Security BearerAuth
func (h *CampaignHandler) HandleCloseCampaign(ctx *gin.Context) {
	id, respErr := uintParam(ctx, "campaignID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.CloseCampaign(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrCampaignNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("campaign", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleCloseCampaign -> h.svc.CloseCampaign -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.StatusResponse{Status: "closed"})
}

// HandleDeleteCampaign godoc
// @Summary      Soft-delete a campaign
// @Tags         admin-campaigns
// @Produce      json
// @Param        campaignID  path      int  true  "campaign ID"
// @Success      200  {object}  response.StatusResponse
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/campaigns/{campaignID} [delete]
// @Security BearerAuth
func (h *CampaignHandler) HandleDeleteCampaign(ctx *gin.Context) {
	id, respErr := uintParam(ctx, "campaignID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteCampaign(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrCampaignNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("campaign", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleDeleteCampaign -> h.svc.DeleteCampaign -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.StatusResponse{Status: "deleted"})
}

// HandleGetRoster godoc
// @Summary      Parents of a campaign with their contribution
// @Description  One row per parent, contribution is null when the parent has none.
// @Tags         admin-campaigns
// @Produce      json
// @Param        campaignID      path      int   true   "campaign ID"
// @Param        include_hidden  query     bool  false  "include hidden parents"
// @Success      200  {object}  response.RosterResponse
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/campaigns/{campaignID}/roster [get]
// @Security BearerAuth
func (h *CampaignHandler) HandleGetRoster(ctx *gin.Context) {
	id, respErr := uintParam(ctx, "campaignID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var query request.RosterQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	roster, err := h.roster.BuildRoster(ctx.Request.Context(), id, query.IncludeHidden)
	if err != nil {
		if errors.Is(err, service.ErrCampaignNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("campaign", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleGetRoster -> h.roster.BuildRoster -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewRosterResponse(roster))
}
