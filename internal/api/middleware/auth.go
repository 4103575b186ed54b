package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skarbek/skarbek-api/internal/api/handler/v1/response"
	"github.com/skarbek/skarbek-api/internal/domain"
	"github.com/skarbek/skarbek-api/internal/pkg/jwthelper"
)

const (
	principalKey  = "principal"
	credentialKey = "parent_credential"
)

var (
	errMissingToken = errors.New("missing bearer token")
	errWrongRole    = errors.New("insufficient role for this resource")
)

type TokenVerifier interface {
	Verify(token string) (jwthelper.Claims, error)
}

type Authenticator struct {
	tokens TokenVerifier
}

func NewAuthenticator(tokens TokenVerifier) *Authenticator {
	return &Authenticator{
		tokens: tokens,
	}
}

// VerifyJWT resolves the bearer token into a principal. It does not look at
// the role; chain RequireRole for that.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, ok := bearerToken(ctx.GetHeader("Authorization"))
		if !ok {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		claims, err := a.tokens.Verify(token)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(jwthelper.ErrInvalidToken))
			return
		}

		principal, err := claims.Principal()
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(jwthelper.ErrInvalidToken))
			return
		}

		ctx.Set(principalKey, principal)
		ctx.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		principal, ok := PrincipalFromContext(ctx)
		if !ok {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		if principal.Role != role {
			response.RenderErr(ctx, response.ErrForbidden(errWrongRole))
			return
		}

		ctx.Next()
	}
}

func PrincipalFromContext(ctx *gin.Context) (domain.Principal, bool) {
	value, ok := ctx.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}

	principal, ok := value.(domain.Principal)
	return principal, ok
}

type ParentResolver interface {
	ResolveParent(ctx context.Context, principal domain.Principal) (domain.ParentCredential, error)
	EnsurePasswordChanged(cred domain.ParentCredential) error
}

// ResolveParent loads the current credential state of the parent behind the
// token. Tokens of other roles, of deleted parents or from before the last
// password change are rejected with 401.
func ResolveParent(resolver ParentResolver) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		principal, ok := PrincipalFromContext(ctx)
		if !ok {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		cred, err := resolver.ResolveParent(ctx.Request.Context(), principal)
		if err != nil {
			if errors.Is(err, jwthelper.ErrInvalidToken) {
				response.RenderErr(ctx, response.ErrUnauthorized(err))
				return
			}

			err = fmt.Errorf("middleware.ResolveParent -> resolver.ResolveParent -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
			return
		}

		ctx.Set(credentialKey, cred)
		ctx.Next()
	}
}

// RequirePasswordChanged blocks parents that still use their temporary
// password. It must run after ResolveParent.
func RequirePasswordChanged(resolver ParentResolver) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		cred, ok := CredentialFromContext(ctx)
		if !ok {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		if err := resolver.EnsurePasswordChanged(cred); err != nil {
			response.RenderErr(ctx, response.ErrPasswordChangeRequired())
			return
		}

		ctx.Next()
	}
}

func CredentialFromContext(ctx *gin.Context) (domain.ParentCredential, bool) {
	value, ok := ctx.Get(credentialKey)
	if !ok {
		return domain.ParentCredential{}, false
	}

	cred, ok := value.(domain.ParentCredential)
	return cred, ok
}
