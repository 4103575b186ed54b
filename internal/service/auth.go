package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/skarbek/skarbek-api/internal/domain"
	"github.com/skarbek/skarbek-api/internal/metrics"
	"github.com/skarbek/skarbek-api/internal/pkg/jwthelper"
	"github.com/skarbek/skarbek-api/internal/pkg/password"
	"github.com/skarbek/skarbek-api/internal/repository"
)

var (
	ErrAdminExists            = repository.ErrAdminExists
	ErrWrongCredentials       = errors.New("invalid credentials")
	ErrWrongPassword          = errors.New("old password is incorrect")
	ErrMissingPassword        = errors.New("old_password and new_password are required")
	ErrSamePassword           = errors.New("new password must differ from the old password")
	ErrWeakPassword           = password.ErrWeakPassword
	ErrInvalidToken           = jwthelper.ErrInvalidToken
	ErrPasswordChangeRequired = errors.New("password change required")
)

type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuthAdminRepository interface {
	Create(ctx context.Context, admin domain.Admin) (domain.Admin, error)
	FindByUsername(ctx context.Context, username string) (domain.Admin, error)
}

type CredentialRepository interface {
	FindCredentialByEmail(ctx context.Context, email string) (domain.ParentCredential, error)
	FindCredentialByID(ctx context.Context, id uint) (domain.ParentCredential, error)
	UpdatePassword(ctx context.Context, id uint, hash string, force bool, changedAt *time.Time) (domain.ParentCredential, error)
}

type TokenManager interface {
	Issue(subject uint, role domain.Role, version int, ttl time.Duration) (string, error)
	Verify(token string) (jwthelper.Claims, error)
}

type TokenTTL struct {
	Admin  time.Duration
	Parent time.Duration
}

// LoginResult is returned by every operation that hands a token to a parent.
type LoginResult struct {
	Token                 string
	RequirePasswordChange bool
}

type AuthService struct {
	tx      Transactor
	admins  AuthAdminRepository
	parents CredentialRepository
	tokens  TokenManager
	ttl     TokenTTL
	policy  password.Policy
}

func NewAuthService(tx Transactor, admins AuthAdminRepository, parents CredentialRepository, tokens TokenManager, ttl TokenTTL, policy password.Policy) *AuthService {
	return &AuthService{
		tx:      tx,
		admins:  admins,
		parents: parents,
		tokens:  tokens,
		ttl:     ttl,
		policy:  policy,
	}
}

// EnsureAdmin creates the seed admin unless an admin with that username
// already exists. It reports whether a row was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, plainPassword string) (bool, error) {
	created := false

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		_, err := s.admins.FindByUsername(ctx, username)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrAdminNotFound) {
			return fmt.Errorf("s.admins.FindByUsername -> %w", err)
		}

		hash, err := password.Hash(plainPassword)
		if err != nil {
			return fmt.Errorf("password.Hash -> %w", err)
		}

		if _, err = s.admins.Create(ctx, domain.Admin{Username: username, Password: hash}); err != nil {
			return fmt.Errorf("s.admins.Create -> %w", err)
		}
		created = true

		return nil
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

func (s *AuthService) AdminLogin(ctx context.Context, username, plainPassword string) (string, error) {
	admin, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			metrics.Logins.WithLabelValues(string(domain.RoleAdmin), "rejected").Inc()
			return "", ErrWrongCredentials
		}

		return "", fmt.Errorf("s.admins.FindByUsername -> %w", err)
	}

	if !password.Matches(admin.Password, plainPassword) {
		metrics.Logins.WithLabelValues(string(domain.RoleAdmin), "rejected").Inc()
		return "", ErrWrongCredentials
	}

	token, err := s.tokens.Issue(admin.ID, domain.RoleAdmin, 0, s.ttl.Admin)
	if err != nil {
		return "", fmt.Errorf("s.tokens.Issue -> %w", err)
	}
	metrics.Logins.WithLabelValues(string(domain.RoleAdmin), "accepted").Inc()

	return token, nil
}

// ParentLogin does not enforce the password change gate; the result tells
// the caller whether a change is still required.
func (s *AuthService) ParentLogin(ctx context.Context, email, plainPassword string) (LoginResult, error) {
	cred, err := s.parents.FindCredentialByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrParentNotFound) {
			metrics.Logins.WithLabelValues(string(domain.RoleParent), "rejected").Inc()
			return LoginResult{}, ErrWrongCredentials
		}

		return LoginResult{}, fmt.Errorf("s.parents.FindCredentialByEmail -> %w", err)
	}

	if cred.PasswordHash == "" || !password.Matches(cred.PasswordHash, plainPassword) {
		metrics.Logins.WithLabelValues(string(domain.RoleParent), "rejected").Inc()
		return LoginResult{}, ErrWrongCredentials
	}

	token, err := s.tokens.Issue(cred.ParentID, domain.RoleParent, cred.TokenVersion, s.ttl.Parent)
	if err != nil {
		return LoginResult{}, fmt.Errorf("s.tokens.Issue -> %w", err)
	}
	metrics.Logins.WithLabelValues(string(domain.RoleParent), "accepted").Inc()

	return LoginResult{
		Token:                 token,
		RequirePasswordChange: cred.MustChangePassword(),
	}, nil
}

// ResolveParent turns a verified principal into the parent's current
// credential state. Tokens minted before the last password change no longer
// resolve.
func (s *AuthService) ResolveParent(ctx context.Context, principal domain.Principal) (domain.ParentCredential, error) {
	if principal.Role != domain.RoleParent {
		return domain.ParentCredential{}, ErrInvalidToken
	}

	cred, err := s.parents.FindCredentialByID(ctx, principal.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrParentNotFound) {
			return domain.ParentCredential{}, ErrInvalidToken
		}

		return domain.ParentCredential{}, fmt.Errorf("s.parents.FindCredentialByID -> %w", err)
	}

	if cred.TokenVersion != principal.TokenVersion {
		return domain.ParentCredential{}, ErrInvalidToken
	}

	return cred, nil
}

// EnsurePasswordChanged is the gate in front of every parent operation other
// than login and the initial password change.
func (s *AuthService) EnsurePasswordChanged(cred domain.ParentCredential) error {
	if cred.MustChangePassword() {
		return ErrPasswordChangeRequired
	}

	return nil
}

// ChangeInitialPassword replaces the parent's password and clears the forced
// change flag. Checks run in a fixed order: both fields present, new differs
// from old, old matches the stored hash. The password policy runs last.
func (s *AuthService) ChangeInitialPassword(ctx context.Context, cred domain.ParentCredential, oldPassword, newPassword string) (LoginResult, error) {
	if oldPassword == "" || newPassword == "" {
		return LoginResult{}, ErrMissingPassword
	}

	if oldPassword == newPassword {
		return LoginResult{}, ErrSamePassword
	}

	var result LoginResult

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		current, err := s.parents.FindCredentialByID(ctx, cred.ParentID)
		if err != nil {
			return fmt.Errorf("s.parents.FindCredentialByID -> %w", err)
		}

		if !password.Matches(current.PasswordHash, oldPassword) {
			return ErrWrongPassword
		}

		if err = s.policy.Check(newPassword); err != nil {
			return err
		}

		hash, err := password.Hash(newPassword)
		if err != nil {
			return fmt.Errorf("password.Hash -> %w", err)
		}

		now := time.Now().UTC()
		updated, err := s.parents.UpdatePassword(ctx, current.ParentID, hash, false, &now)
		if err != nil {
			return fmt.Errorf("s.parents.UpdatePassword -> %w", err)
		}

		token, err := s.tokens.Issue(updated.ParentID, domain.RoleParent, updated.TokenVersion, s.ttl.Parent)
		if err != nil {
			return fmt.Errorf("s.tokens.Issue -> %w", err)
		}

		result = LoginResult{
			Token:                 token,
			RequirePasswordChange: false,
		}

		return nil
	})
	if err != nil {
		return LoginResult{}, err
	}

	zap.L().Info("parent changed initial password", zap.Uint("parent_id", cred.ParentID))

	return result, nil
}
