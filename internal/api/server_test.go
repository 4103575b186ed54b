package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skarbek/skarbek-api/internal/config"
	"github.com/skarbek/skarbek-api/internal/db"
	"github.com/skarbek/skarbek-api/internal/pkg/password"
	"github.com/skarbek/skarbek-api/internal/repository/dao"
)

type outbox struct {
	mu        sync.Mutex
	passwords map[string]string
	fail      bool
}

func (o *outbox) SendTemporaryPassword(_ context.Context, email, password, _ string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fail {
		return errors.New("relay refused message")
	}
	o.passwords[email] = password
	return nil
}

func (o *outbox) passwordFor(t *testing.T, email string) string {
	t.Helper()

	o.mu.Lock()
	defer o.mu.Unlock()

	pw, ok := o.passwords[email]
	require.True(t, ok, "no temporary password sent to %s", email)
	return pw
}

type testEnv struct {
	server *Server
	mail   *outbox
}

func newTestEnv(t *testing.T, opts ...func(conf *config.AppConfig)) *testEnv {
	t.Helper()

	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	require.NoError(t, dao.InitTables(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	conf := &config.AppConfig{
		API: &config.APIConfig{
			Environment:    "test",
			BaseURL:        "localhost",
			JWTSigningKey:  "api-test-signing-key",
			AdminTokenTTL:  time.Hour,
			ParentTokenTTL: 7 * 24 * time.Hour,
		},
		Gin: &config.GinConfig{Mode: gin.TestMode},
		Password: &config.PasswordConfig{
			TempLength:   10,
			TempAlphabet: password.ReadableAlphabet,
		},
	}

	for _, opt := range opts {
		opt(conf)
	}

	mail := &outbox{passwords: map[string]string{}}
	s, err := NewServer(conf, conn, mail)
	require.NoError(t, err)

	_, err = s.Auth.EnsureAdmin(context.Background(), "admin", "Admin1234")
	require.NoError(t, err)

	return &testEnv{server: s, mail: mail}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.server.Router.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/admin/login", "", gin.H{"username": "admin", "password": "Admin1234"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	return decode[struct {
		Token string `json:"token"`
	}](t, rec).Token
}

func (e *testEnv) createParent(t *testing.T, admin, name, email string) uint {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/admin/parents", admin, gin.H{"name": name, "email": email})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	return decode[struct {
		ID uint `json:"id"`
	}](t, rec).ID
}

func (e *testEnv) createCampaign(t *testing.T, admin, title string, target float64) uint {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/admin/campaigns", admin, gin.H{"title": title, "target_amount": target})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	return decode[struct {
		ID uint `json:"id"`
	}](t, rec).ID
}

// activeParentToken creates a parent and completes the initial password change.
func (e *testEnv) activeParentToken(t *testing.T, admin, name, email string) (uint, string) {
	t.Helper()

	id := e.createParent(t, admin, name, email)

	rec := e.do(t, http.MethodPost, "/parents/login", "", gin.H{"email": email, "password": e.mail.passwordFor(t, email)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[struct {
		Token string `json:"token"`
	}](t, rec)

	rec = e.do(t, http.MethodPost, "/parents/change-password-initial", login.Token, gin.H{
		"old_password": e.mail.passwordFor(t, email),
		"new_password": "Parent1234",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	return id, decode[struct {
		Token string `json:"token"`
	}](t, rec).Token
}

func TestServer_FirstLoginScenario(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)

	env.createCampaign(t, admin, "Trip", 100)
	env.createParent(t, admin, "Anna Nowak", "anna@example.com")
	temporary := env.mail.passwordFor(t, "anna@example.com")

	rec := env.do(t, http.MethodPost, "/parents/login", "", gin.H{"email": "anna@example.com", "password": temporary})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[map[string]interface{}](t, rec)
	assert.Equal(t, true, login["require_password_change"])
	firstToken := login["token"].(string)

	for _, path := range []string{"/parents/me", "/parents/campaigns", "/parents/contributions"} {
		rec = env.do(t, http.MethodGet, path, firstToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
		assert.Equal(t, "password_change_required", decode[errBody](t, rec).Code, path)
	}

	rec = env.do(t, http.MethodPost, "/parents/contributions", firstToken, gin.H{"campaign_id": 1, "amount": 10})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/parents/change-password-initial", firstToken, gin.H{
		"old_password": temporary,
		"new_password": "NewPass123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	changed := decode[map[string]interface{}](t, rec)
	assert.Equal(t, false, changed["require_password_change"])
	newToken := changed["token"].(string)

	rec = env.do(t, http.MethodGet, "/parents/me", newToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "anna@example.com", me["email"])

	rec = env.do(t, http.MethodGet, "/parents/me", firstToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/parents/login", "", gin.H{"email": "anna@example.com", "password": "NewPass123"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, decode[map[string]interface{}](t, rec), "require_password_change")
}

func TestServer_GatedRequestsDoNotMutate(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	campaignID := env.createCampaign(t, admin, "Trip", 100)
	env.createParent(t, admin, "Anna Nowak", "anna@example.com")

	rec := env.do(t, http.MethodPost, "/parents/login", "", gin.H{
		"email":    "anna@example.com",
		"password": env.mail.passwordFor(t, "anna@example.com"),
	})
	token := decode[struct {
		Token string `json:"token"`
	}](t, rec).Token

	rec = env.do(t, http.MethodPost, "/parents/contributions", token, gin.H{"campaign_id": campaignID, "amount": 50})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/admin/campaigns/"+itoa(campaignID)+"/roster", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	roster := decode[struct {
		Rows []struct {
			Contribution *struct{} `json:"contribution"`
		} `json:"rows"`
	}](t, rec)
	require.Len(t, roster.Rows, 1)
	assert.Nil(t, roster.Rows[0].Contribution)
}

func TestServer_ChangeInitialPasswordErrors(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	env.createParent(t, admin, "Anna Nowak", "anna@example.com")
	temporary := env.mail.passwordFor(t, "anna@example.com")

	rec := env.do(t, http.MethodPost, "/parents/login", "", gin.H{"email": "anna@example.com", "password": temporary})
	token := decode[struct {
		Token string `json:"token"`
	}](t, rec).Token

	tests := []struct {
		name   string
		body   gin.H
		status int
	}{
		{name: "missing fields", body: gin.H{}, status: http.StatusBadRequest},
		{name: "same password", body: gin.H{"old_password": "Whatever1", "new_password": "Whatever1"}, status: http.StatusBadRequest},
		{name: "wrong old password", body: gin.H{"old_password": "Wrong12345", "new_password": "NewPass123"}, status: http.StatusUnauthorized},
		{name: "only old password", body: gin.H{"old_password": temporary}, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/parents/change-password-initial", token, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	rec = env.do(t, http.MethodGet, "/parents/me", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_AuthGate(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	_, parent := env.activeParentToken(t, admin, "Anna Nowak", "anna@example.com")

	rec := env.do(t, http.MethodGet, "/admin/parents", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decode[errBody](t, rec).Code)

	rec = env.do(t, http.MethodGet, "/admin/parents", parent, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decode[errBody](t, rec).Code)

	rec = env.do(t, http.MethodGet, "/parents/me", admin, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tampered := []byte(admin)
	last := len(tampered) - 5
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}
	rec = env.do(t, http.MethodGet, "/admin/parents", string(tampered), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/parents", nil)
	req.Header.Set("Authorization", "Token "+admin)
	res := httptest.NewRecorder()
	env.server.Router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestServer_AdminLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/admin/login", "", gin.H{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/admin/login", "", gin.H{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decode[errBody](t, rec).Code)
}

func TestServer_CreateParent(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)

	rec := env.do(t, http.MethodPost, "/admin/parents", admin, gin.H{"name": "No Email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.createParent(t, admin, "Anna Nowak", "anna@example.com")

	rec = env.do(t, http.MethodPost, "/admin/parents", admin, gin.H{"email": "anna@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decode[errBody](t, rec).Code)

	env.mail.fail = true
	rec = env.do(t, http.MethodPost, "/admin/parents", admin, gin.H{"name": "Jan", "email": "jan@example.com"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal", decode[errBody](t, rec).Code)

	rec = env.do(t, http.MethodGet, "/admin/parents?include_hidden=true", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	parents := decode[[]map[string]interface{}](t, rec)
	require.Len(t, parents, 1)
	assert.Equal(t, "anna@example.com", parents[0]["email"])
}

func TestServer_ContributionsAndRoster(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	campaignID := env.createCampaign(t, admin, "Trip", 100)
	annaID := env.createParent(t, admin, "Anna Nowak", "anna@example.com")
	janID := env.createParent(t, admin, "Jan Kowalski", "jan@example.com")

	body := gin.H{"campaign_id": campaignID, "parent_id": annaID, "amount_expected": 25}
	rec := env.do(t, http.MethodPost, "/admin/contributions", admin, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "pending", first["status"])

	rec = env.do(t, http.MethodPost, "/admin/contributions", admin, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first["id"], decode[map[string]interface{}](t, rec)["id"])

	rec = env.do(t, http.MethodPost, "/admin/contributions", admin, gin.H{"campaign_id": 999, "parent_id": annaID})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[errBody](t, rec).Code)

	rec = env.do(t, http.MethodPost, "/admin/contributions/mark-paid", admin, gin.H{"campaign_id": campaignID, "parent_id": janID, "amount": 5})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/admin/contributions/mark-paid", admin, gin.H{"campaign_id": campaignID, "parent_id": annaID, "amount": 25, "note": "cash"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "paid", decode[map[string]interface{}](t, rec)["status"])

	rec = env.do(t, http.MethodPost, "/admin/parents/"+itoa(janID)+"/hide", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]interface{}](t, rec)["is_hidden"])

	type rosterBody struct {
		Campaign struct {
			ID    uint   `json:"id"`
			Title string `json:"title"`
		} `json:"campaign"`
		Rows []struct {
			ParentID     uint                   `json:"parent_id"`
			ParentEmail  string                 `json:"parent_email"`
			Contribution map[string]interface{} `json:"contribution"`
		} `json:"rows"`
	}

	rec = env.do(t, http.MethodGet, "/admin/campaigns/"+itoa(campaignID)+"/roster", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	roster := decode[rosterBody](t, rec)
	assert.Equal(t, "Trip", roster.Campaign.Title)
	require.Len(t, roster.Rows, 1)
	assert.Equal(t, annaID, roster.Rows[0].ParentID)
	assert.Equal(t, "paid", roster.Rows[0].Contribution["status"])

	rec = env.do(t, http.MethodGet, "/admin/campaigns/"+itoa(campaignID)+"/roster?include_hidden=true", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	roster = decode[rosterBody](t, rec)
	require.Len(t, roster.Rows, 2)
	assert.Equal(t, janID, roster.Rows[1].ParentID)
	assert.Nil(t, roster.Rows[1].Contribution)

	rec = env.do(t, http.MethodGet, "/admin/contributions", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	overview := decode[[]struct {
		Contributions []map[string]interface{} `json:"contributions"`
	}](t, rec)
	require.Len(t, overview, 1)
	require.Len(t, overview[0].Contributions, 1)
	assert.Equal(t, "Anna Nowak", overview[0].Contributions[0]["parent_name"])
}

func TestServer_CampaignLifecycle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	campaignID := env.createCampaign(t, admin, "Trip", 100)
	path := "/admin/campaigns/" + itoa(campaignID)

	rec := env.do(t, http.MethodPost, path+"/close", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "closed", decode[map[string]interface{}](t, rec)["status"])

	rec = env.do(t, http.MethodPut, path, admin, gin.H{"title": "Renamed"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decode[errBody](t, rec).Code)

	rec = env.do(t, http.MethodPut, path, admin, gin.H{"description": "Zoo", "unknown_field": "ignored"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "Zoo", updated["description"])
	assert.Equal(t, "Trip", updated["title"])

	rec = env.do(t, http.MethodDelete, path, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "deleted", decode[map[string]interface{}](t, rec)["status"])

	rec = env.do(t, http.MethodGet, "/admin/campaigns", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]map[string]interface{}](t, rec))

	rec = env.do(t, http.MethodGet, path+"/roster", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/admin/campaigns/abc", admin, gin.H{"description": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ParentSelfService(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	campaignID := env.createCampaign(t, admin, "Trip", 100)
	_, token := env.activeParentToken(t, admin, "Anna Nowak", "anna@example.com")

	rec := env.do(t, http.MethodPost, "/parents/contributions", token, gin.H{"campaign_id": campaignID, "amount": 40, "note": "transfer"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	submitted := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "pending", submitted["status"])

	rec = env.do(t, http.MethodPost, "/parents/contributions", token, gin.H{"campaign_id": campaignID, "amount": 45})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, submitted["id"], decode[map[string]interface{}](t, rec)["id"])

	rec = env.do(t, http.MethodGet, "/parents/contributions", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[[]map[string]interface{}](t, rec)
	require.Len(t, mine, 1)
	assert.Equal(t, 45.0, mine[0]["amount_paid"])

	rec = env.do(t, http.MethodGet, "/parents/campaigns", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	campaigns := decode[[]map[string]interface{}](t, rec)
	require.Len(t, campaigns, 1)
	assert.NotNil(t, campaigns[0]["contribution"])

	rec = env.do(t, http.MethodPost, "/parents/contributions", token, gin.H{"campaign_id": 999, "amount": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_AdminResetRevokesParentTokens(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	id, token := env.activeParentToken(t, admin, "Anna Nowak", "anna@example.com")

	rec := env.do(t, http.MethodPost, "/admin/parents/"+itoa(id)+"/change-password", admin, gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/admin/parents/"+itoa(id)+"/change-password", admin, gin.H{"new_password": "newpass"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]interface{}](t, rec)["status"])

	rec = env.do(t, http.MethodGet, "/parents/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/parents/login", "", gin.H{"email": "anna@example.com", "password": "newpass"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]interface{}](t, rec)["require_password_change"])
}

func TestServer_StrongPasswordPolicy(t *testing.T) {
	env := newTestEnv(t, func(conf *config.AppConfig) {
		conf.Password.RequireStrong = true
	})
	admin := env.adminToken(t)
	id := env.createParent(t, admin, "Anna Nowak", "anna@example.com")
	temporary := env.mail.passwordFor(t, "anna@example.com")

	rec := env.do(t, http.MethodPost, "/admin/parents/"+itoa(id)+"/change-password", admin, gin.H{"new_password": "newpass"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decode[errBody](t, rec).Code)

	rec = env.do(t, http.MethodPost, "/parents/login", "", gin.H{"email": "anna@example.com", "password": temporary})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[struct {
		Token string `json:"token"`
	}](t, rec).Token

	rec = env.do(t, http.MethodPost, "/parents/change-password-initial", token, gin.H{
		"old_password": temporary,
		"new_password": "correct horse battery",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/parents/change-password-initial", token, gin.H{
		"old_password": temporary,
		"new_password": "NewPass123",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_DeletedCampaignLeavesParentViews(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	campaignID := env.createCampaign(t, admin, "Trip", 100)
	parentID, token := env.activeParentToken(t, admin, "Anna Nowak", "anna@example.com")

	rec := env.do(t, http.MethodPost, "/admin/contributions", admin, gin.H{"campaign_id": campaignID, "parent_id": parentID, "amount_expected": 50})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodDelete, "/admin/campaigns/"+itoa(campaignID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/parents/contributions", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]map[string]interface{}](t, rec))

	rec = env.do(t, http.MethodGet, "/campaigns/"+itoa(campaignID)+"/status?email=anna@example.com", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[errBody](t, rec).Code)

	rec = env.do(t, http.MethodPost, "/admin/contributions/mark-paid", admin, gin.H{"campaign_id": campaignID, "parent_id": parentID, "amount": 50})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_PublicEndpoints(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	campaignID := env.createCampaign(t, admin, "Trip", 100)

	rec := env.do(t, http.MethodPost, "/admin/parents", admin, gin.H{"name": "Anna Nowak", "email": "anna@example.com", "pupil_id": "P-17"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	annaID := decode[struct {
		ID uint `json:"id"`
	}](t, rec).ID

	rec = env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]interface{}](t, rec)["status"])

	rec = env.do(t, http.MethodGet, "/campaigns", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, rec), 1)

	rec = env.do(t, http.MethodGet, "/campaigns?active=false", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]map[string]interface{}](t, rec))

	status := "/campaigns/" + itoa(campaignID) + "/status"

	rec = env.do(t, http.MethodGet, status, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, status+"?email=ghost@example.com", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "not_found", decode[map[string]interface{}](t, rec)["status"])

	rec = env.do(t, http.MethodGet, status+"?email=anna@example.com", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no_record", decode[map[string]interface{}](t, rec)["status"])

	rec = env.do(t, http.MethodPost, "/admin/contributions", admin, gin.H{"campaign_id": campaignID, "parent_id": annaID, "amount_expected": 30})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, status+"?email=anna@example.com", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "pending", found["status"])
	assert.Equal(t, 30.0, found["amount_expected"])

	rec = env.do(t, http.MethodGet, status+"?pupilId=P-17", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending", decode[map[string]interface{}](t, rec)["status"])

	rec = env.do(t, http.MethodGet, status+"?pupil_id=P-17", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending", decode[map[string]interface{}](t, rec)["status"])

	rec = env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "skarbek_http_requests_total"))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
