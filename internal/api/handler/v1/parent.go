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

type ParentService interface {
	CreateParent(ctx context.Context, input service.NewParent) (domain.Parent, error)
	ListParents(ctx context.Context, includeHidden bool) ([]domain.Parent, error)
	UpdateParent(ctx context.Context, id uint, name, email string) (domain.Parent, error)
	SetHidden(ctx context.Context, id uint, hidden bool) (domain.Parent, error)
	ResetPassword(ctx context.Context, id uint, newPassword string) error
	DeleteParent(ctx context.Context, id uint) error
}

type ParentHandler struct {
	svc ParentService
}

func NewParentHandler(svc ParentService) *ParentHandler {
	return &ParentHandler{
		svc: svc,
	}
}

// HandleCreateParent godoc
// @Summary      Create a parent
// @Description  Generates a temporary password and emails it. Nothing is stored if the email cannot be sent.
// @Tags         admin-parents
// @Accept       json
// @Produce      json
// @Param        request   body      request.CreateParentRequest true "request body"
// @Success      201      {object}   response.ParentResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/parents [post]
// @Security BearerAuth
func (h *ParentHandler) HandleCreateParent(ctx *gin.Context) {
	var req request.CreateParentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	parent, err := h.svc.CreateParent(ctx.Request.Context(), service.NewParent{
		Name:    req.Name,
		Email:   req.Email,
		PupilID: req.PupilID,
	})
	if err != nil {
		if errors.Is(err, service.ErrParentEmailExists) {
			response.RenderErr(ctx, response.ErrConflict(err))
			return
		}

		err = fmt.Errorf("v1.HandleCreateParent -> h.svc.CreateParent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.NewParentResponse(parent))
}

// HandleListParents godoc
// @Summary      List parents
// @Tags         admin-parents
// @Produce      json
// @Param        include_hidden  query     bool  false  "include hidden parents"
// @Success      200  {array}   domain.Parent
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/parents [get]
// @Security BearerAuth
func (h *ParentHandler) HandleListParents(ctx *gin.Context) {
	var query request.ListParentsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	parents, err := h.svc.ListParents(ctx.Request.Context(), query.IncludeHidden)
	if err != nil {
		err = fmt.Errorf("v1.HandleListParents -> h.svc.ListParents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, parents)
}

// HandleUpdateParent godoc
// @Summary      Update a parent's name or email
// @Tags         admin-parents
// @Accept       json
// @Produce      json
// @Param        parentID  path      int  true  "parent ID"
// @Param        request   body      request.UpdateParentRequest true "request body"
// @Success      200  {object}  domain.Parent
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/parents/{parentID} [put]
// @Security BearerAuth
func (h *ParentHandler) HandleUpdateParent(ctx *gin.Context) {
	id, respErr := uintParam(ctx, "parentID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateParentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	parent, err := h.svc.UpdateParent(ctx.Request.Context(), id, req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrParentNotFound):
			response.RenderErr(ctx, response.ErrNotFound("parent", "ID", id))
		case errors.Is(err, service.ErrParentEmailExists):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleUpdateParent -> h.svc.UpdateParent -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, parent)
}

// HandleHideParent godoc
// @Summary      Hide a parent from default listings and rosters
// @Tags         admin-parents
// @Produce      json
// @Param        parentID  path      int  true  "parent ID"
// @Success      200  {object}  domain.Parent
// @Failure      404  {object}  response.Err
// @Router       /admin/parents/{parentID}/hide [post]
// @Security BearerAuth
func (h *ParentHandler) HandleHideParent(ctx *gin.Context) {
	h.setHidden(ctx, true)
}

// HandleUnhideParent godoc
// @Summary      Make a hidden parent visible again
// @Tags         admin-parents
// @Produce      json
// @Param        parentID  path      int  true  "parent ID"
// @Success      200  {object}  domain.Parent
// @Failure      404  {object}  response.Err
// @Router       /admin/parents/{parentID}/unhide [post]
// @Security BearerAuth
func (h *ParentHandler) HandleUnhideParent(ctx *gin.Context) {
	h.setHidden(ctx, false)
}

func (h *ParentHandler) setHidden(ctx *gin.Context, hidden bool) {
	id, respErr := uintParam(ctx, "parentID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	parent, err := h.svc.SetHidden(ctx.Request.Context(), id, hidden)
	if err != nil {
		if errors.Is(err, service.ErrParentNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("parent", "ID", id))
			return
		}

		err = fmt.Errorf("v1.setHidden -> h.svc.SetHidden -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, parent)
}

// HandleResetPassword godoc
// @Summary      Set a new password for a parent
// @Description  The parent has to change it again on next login.
// @Tags         admin-parents
// @Accept       json
// @Produce      json
// @Param        parentID  path      int  true  "parent ID"
// @Param        request   body      request.ResetPasswordRequest true "request body"
// @Success      200  {object}  response.StatusResponse
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/parents/{parentID}/change-password [post]
// @Security BearerAuth
func (h *ParentHandler) HandleResetPassword(ctx *gin.Context) {
	id, respErr := uintParam(ctx, "parentID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.ResetPassword(ctx.Request.Context(), id, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrWeakPassword):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrParentNotFound):
			response.RenderErr(ctx, response.ErrNotFound("parent", "ID", id))
		default:
			err = fmt.Errorf("v1.HandleResetPassword -> h.svc.ResetPassword -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.StatusResponse{Status: "ok"})
}

// HandleDeleteParent godoc
// @Summary      Delete a parent and its contributions
// @Tags         admin-parents
// @Produce      json
// @Param        parentID  path      int  true  "parent ID"
// @Success      200  {object}  response.StatusResponse
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/parents/{parentID} [delete]
// @Security BearerAuth
func (h *ParentHandler) HandleDeleteParent(ctx *gin.Context) {
	id, respErr := uintParam(ctx, "parentID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteParent(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrParentNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("parent", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleDeleteParent -> h.svc.DeleteParent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.StatusResponse{Status: "deleted"})
}
