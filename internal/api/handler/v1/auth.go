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

type AuthService interface {
	AdminLogin(ctx context.Context, username, password string) (string, error)
	ParentLogin(ctx context.Context, email, password string) (service.LoginResult, error)
	ChangeInitialPassword(ctx context.Context, cred domain.ParentCredential, oldPassword, newPassword string) (service.LoginResult, error)
}

type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{
		svc: svc,
	}
}

// HandleAdminLogin godoc
// @Summary      Login as admin
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request   body      request.AdminLoginRequest true "request body"
// @Success      200      {object}   response.LoginResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/login [post]
func (h *AuthHandler) HandleAdminLogin(ctx *gin.Context) {
	var req request.AdminLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	token, err := h.svc.AdminLogin(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrWrongCredentials) {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		err = fmt.Errorf("v1.HandleAdminLogin -> h.svc.AdminLogin -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Token: token,
	})
}

// HandleParentLogin godoc
// @Summary      Login as parent
// @Description  require_password_change is present and true until the temporary password is replaced.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request   body      request.ParentLoginRequest true "request body"
// @Success      200      {object}   response.ParentLoginResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /parents/login [post]
func (h *AuthHandler) HandleParentLogin(ctx *gin.Context) {
	var req request.ParentLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.ParentLogin(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrWrongCredentials) {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		err = fmt.Errorf("v1.HandleParentLogin -> h.svc.ParentLogin -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.ParentLoginResponse{
		Token:                 result.Token,
		RequirePasswordChange: result.RequirePasswordChange,
	})
}

// HandleChangeInitialPassword godoc
// @Summary      Replace the temporary password
// @Description  Returns a fresh token; tokens issued before the change stop working.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request   body      request.ChangeInitialPasswordRequest true "request body"
// @Success      200      {object}   response.PasswordChangedResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /parents/change-password-initial [post]
// @Security BearerAuth
func (h *AuthHandler) HandleChangeInitialPassword(ctx *gin.Context) {
	cred, ok := middleware.CredentialFromContext(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized(service.ErrInvalidToken))
		return
	}

	var req request.ChangeInitialPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.ChangeInitialPassword(ctx.Request.Context(), cred, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingPassword),
			errors.Is(err, service.ErrSamePassword),
			errors.Is(err, service.ErrWeakPassword):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrWrongPassword):
			response.RenderErr(ctx, response.ErrUnauthorized(err))
		default:
			err = fmt.Errorf("v1.HandleChangeInitialPassword -> h.svc.ChangeInitialPassword -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.PasswordChangedResponse{
		Token:                 result.Token,
		RequirePasswordChange: result.RequirePasswordChange,
	})
}
