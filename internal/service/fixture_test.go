package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skarbek/skarbek-api/internal/db"
	"github.com/skarbek/skarbek-api/internal/domain"
	"github.com/skarbek/skarbek-api/internal/pkg/jwthelper"
	"github.com/skarbek/skarbek-api/internal/pkg/password"
	"github.com/skarbek/skarbek-api/internal/repository"
	"github.com/skarbek/skarbek-api/internal/repository/dao"
)

type sentMail struct {
	Email    string
	Password string
	Name     string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMail
}

func (r *recordingSender) SendTemporaryPassword(_ context.Context, email, password, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent = append(r.sent, sentMail{Email: email, Password: password, Name: name})
	return nil
}

func (r *recordingSender) last(t *testing.T) sentMail {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	require.NotEmpty(t, r.sent)
	return r.sent[len(r.sent)-1]
}

type failingSender struct{}

func (failingSender) SendTemporaryPassword(context.Context, string, string, string) error {
	return errors.New("smtp relay unreachable")
}

type fixture struct {
	tx            *dao.Transactor
	admins        *repository.AdminRepository
	parents       *repository.ParentRepository
	campaigns     *repository.CampaignRepository
	contributions *repository.ContributionRepository
	mail          *recordingSender

	Auth          *AuthService
	Parents       *ParentService
	Campaigns     *CampaignService
	Contributions *ContributionService
	Roster        *RosterService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	return newFixtureWithPolicy(t, password.Policy{})
}

func newFixtureWithPolicy(t *testing.T, policy password.Policy) *fixture {
	t.Helper()

	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "skarbek.db"))
	require.NoError(t, err)
	require.NoError(t, dao.InitTables(conn))

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	generator, err := password.NewGenerator(10, password.ReadableAlphabet)
	require.NoError(t, err)

	f := &fixture{
		tx:            dao.NewTransactor(conn),
		admins:        repository.NewAdminRepository(dao.NewAdminDAO(conn)),
		parents:       repository.NewParentRepository(dao.NewParentDAO(conn)),
		campaigns:     repository.NewCampaignRepository(dao.NewCampaignDAO(conn)),
		contributions: repository.NewContributionRepository(dao.NewContributionDAO(conn)),
		mail:          &recordingSender{},
	}

	f.Auth = NewAuthService(f.tx, f.admins, f.parents, jwthelper.NewManager("test-signing-key"), TokenTTL{
		Admin:  time.Hour,
		Parent: 7 * 24 * time.Hour,
	}, policy)
	f.Parents = NewParentService(f.tx, f.parents, f.mail, generator, policy)
	f.Campaigns = NewCampaignService(f.tx, f.campaigns)
	f.Contributions = NewContributionService(f.tx, f.campaigns, f.parents, f.contributions)
	f.Roster = NewRosterService(f.tx, f.campaigns, f.parents, f.contributions)

	return f
}

func (f *fixture) createParent(t *testing.T, name, email string) (domain.Parent, string) {
	t.Helper()

	parent, err := f.Parents.CreateParent(context.Background(), NewParent{Name: name, Email: email})
	require.NoError(t, err)

	return parent, f.mail.last(t).Password
}

func (f *fixture) createCampaign(t *testing.T, title string, target float64) domain.Campaign {
	t.Helper()

	campaign, err := f.Campaigns.CreateCampaign(context.Background(), domain.Campaign{
		Title:        title,
		TargetAmount: target,
		Active:       true,
	})
	require.NoError(t, err)

	return campaign
}
