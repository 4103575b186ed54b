package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skarbek/skarbek-api/internal/domain"
)

func TestContributionService_CreateContributionIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anna, _ := f.createParent(t, "Anna Nowak", "anna@example.com")
	campaign := f.createCampaign(t, "Trip", 100)

	first, created, err := f.Contributions.CreateContribution(ctx, campaign.ID, anna.ID, 25)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.ContributionPending, first.Status)
	assert.Equal(t, 0.0, first.AmountPaid)
	assert.Equal(t, 25.0, first.AmountExpected)

	second, created, err := f.Contributions.CreateContribution(ctx, campaign.ID, anna.ID, 99)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 25.0, second.AmountExpected)

	count, err := f.contributions.CountByPair(ctx, campaign.ID, anna.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestContributionService_CreateContributionConcurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anna, _ := f.createParent(t, "Anna Nowak", "anna@example.com")
	campaign := f.createCampaign(t, "Trip", 100)

	const workers = 8

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ids     = map[uint]struct{}{}
		created int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			c, ok, err := f.Contributions.CreateContribution(ctx, campaign.ID, anna.ID, 25)
			assert.NoError(t, err)

			mu.Lock()
			defer mu.Unlock()
			ids[c.ID] = struct{}{}
			if ok {
				created++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, ids, 1)

	count, err := f.contributions.CountByPair(ctx, campaign.ID, anna.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestContributionService_CreateContributionMissingEntities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anna, _ := f.createParent(t, "Anna Nowak", "anna@example.com")
	campaign := f.createCampaign(t, "Trip", 100)

	_, _, err := f.Contributions.CreateContribution(ctx, 999, anna.ID, 25)
	assert.ErrorIs(t, err, ErrCampaignNotFound)

	_, _, err = f.Contributions.CreateContribution(ctx, campaign.ID, 999, 25)
	assert.ErrorIs(t, err, ErrParentNotFound)
}

func TestContributionService_MarkPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anna, _ := f.createParent(t, "Anna Nowak", "anna@example.com")
	campaign := f.createCampaign(t, "Trip", 100)

	_, err := f.Contributions.MarkPaid(ctx, campaign.ID, anna.ID, 25, "cash")
	assert.ErrorIs(t, err, ErrContributionNotFound)

	_, _, err = f.Contributions.CreateContribution(ctx, campaign.ID, anna.ID, 25)
	require.NoError(t, err)

	paid, err := f.Contributions.MarkPaid(ctx, campaign.ID, anna.ID, 20, "cash")
	require.NoError(t, err)
	assert.Equal(t, domain.ContributionPaid, paid.Status)
	assert.Equal(t, 20.0, paid.AmountPaid)
	assert.Equal(t, "cash", paid.Note)
	require.NotNil(t, paid.PaidAt)

	again, err := f.Contributions.MarkPaid(ctx, campaign.ID, anna.ID, 25, "transfer")
	require.NoError(t, err)
	assert.Equal(t, 25.0, again.AmountPaid)
	assert.Equal(t, "transfer", again.Note)
	assert.Equal(t, paid.ID, again.ID)
}

func TestContributionService_MarkPaidOnClosedCampaign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anna, _ := f.createParent(t, "Anna Nowak", "anna@example.com")
	campaign := f.createCampaign(t, "Trip", 100)

	_, _, err := f.Contributions.CreateContribution(ctx, campaign.ID, anna.ID, 25)
	require.NoError(t, err)
	require.NoError(t, f.Campaigns.CloseCampaign(ctx, campaign.ID))

	paid, err := f.Contributions.MarkPaid(ctx, campaign.ID, anna.ID, 25, "")
	require.NoError(t, err)
	assert.True(t, paid.IsPaid())
}

func TestContributionService_SubmitContribution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anna, _ := f.createParent(t, "Anna Nowak", "anna@example.com")
	campaign := f.createCampaign(t, "Trip", 100)

	submitted, err := f.Contributions.SubmitContribution(ctx, anna.ID, campaign.ID, 30, "transfer on monday")
	require.NoError(t, err)
	assert.Equal(t, domain.ContributionPending, submitted.Status)
	assert.Equal(t, 30.0, submitted.AmountPaid)

	resubmitted, err := f.Contributions.SubmitContribution(ctx, anna.ID, campaign.ID, 35, "corrected")
	require.NoError(t, err)
	assert.Equal(t, submitted.ID, resubmitted.ID)
	assert.Equal(t, 35.0, resubmitted.AmountPaid)
	assert.Equal(t, "corrected", resubmitted.Note)

	_, err = f.Contributions.MarkPaid(ctx, campaign.ID, anna.ID, 35, "confirmed")
	require.NoError(t, err)

	_, err = f.Contributions.SubmitContribution(ctx, anna.ID, campaign.ID, 1, "")
	assert.ErrorIs(t, err, ErrContributionPaid)

	_, err = f.Contributions.SubmitContribution(ctx, anna.ID, 999, 1, "")
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestContributionService_ParentViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anna, _ := f.createParent(t, "Anna Nowak", "anna@example.com")
	jan, _ := f.createParent(t, "Jan Kowalski", "jan@example.com")
	trip := f.createCampaign(t, "Trip", 100)
	books := f.createCampaign(t, "Books", 40)

	_, _, err := f.Contributions.CreateContribution(ctx, trip.ID, anna.ID, 25)
	require.NoError(t, err)
	_, _, err = f.Contributions.CreateContribution(ctx, books.ID, jan.ID, 10)
	require.NoError(t, err)

	mine, err := f.Contributions.ListForParent(ctx, anna.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, trip.ID, mine[0].CampaignID)

	campaigns, err := f.Contributions.ParentCampaigns(ctx, anna.ID)
	require.NoError(t, err)
	require.Len(t, campaigns, 2)
	assert.Equal(t, trip.ID, campaigns[0].Campaign.ID)
	require.NotNil(t, campaigns[0].Contribution)
	assert.Equal(t, 25.0, campaigns[0].Contribution.AmountExpected)
	assert.Nil(t, campaigns[1].Contribution)
}

func TestContributionService_Overview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anna, _ := f.createParent(t, "Anna Nowak", "anna@example.com")
	trip := f.createCampaign(t, "Trip", 100)
	inactive := f.createCampaign(t, "Books", 40)

	_, err := f.Campaigns.UpdateCampaign(ctx, inactive.ID, domain.CampaignUpdate{Active: ptr(false)})
	require.NoError(t, err)
	_, _, err = f.Contributions.CreateContribution(ctx, trip.ID, anna.ID, 25)
	require.NoError(t, err)

	overview, err := f.Contributions.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, overview, 1)
	assert.Equal(t, trip.ID, overview[0].Campaign.ID)
	require.Len(t, overview[0].Contributions, 1)
	assert.Equal(t, "Anna Nowak", overview[0].Contributions[0].ParentName)
	assert.Equal(t, "anna@example.com", overview[0].Contributions[0].ParentEmail)
}

func TestContributionService_Status(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pupil := "P-17"
	anna, err := f.Parents.CreateParent(ctx, NewParent{Name: "Anna Nowak", Email: "anna@example.com", PupilID: &pupil})
	require.NoError(t, err)
	campaign := f.createCampaign(t, "Trip", 100)

	_, err = f.Contributions.Status(ctx, campaign.ID, "", "")
	assert.ErrorIs(t, err, ErrMissingLookupKey)

	status, err := f.Contributions.Status(ctx, campaign.ID, "ghost@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, StatusParentNotFound, status.Status)

	status, err = f.Contributions.Status(ctx, campaign.ID, "anna@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, StatusNoRecord, status.Status)
	assert.Nil(t, status.AmountPaid)

	_, _, err = f.Contributions.CreateContribution(ctx, campaign.ID, anna.ID, 25)
	require.NoError(t, err)

	status, err = f.Contributions.Status(ctx, campaign.ID, "", "P-17")
	require.NoError(t, err)
	assert.Equal(t, string(domain.ContributionPending), status.Status)
	require.NotNil(t, status.AmountExpected)
	assert.Equal(t, 25.0, *status.AmountExpected)
}

func TestContributionService_DeletedCampaignIsHidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anna, _ := f.createParent(t, "Anna Nowak", "anna@example.com")
	kept := f.createCampaign(t, "Trip", 100)
	deleted := f.createCampaign(t, "Zoo", 50)

	_, _, err := f.Contributions.CreateContribution(ctx, kept.ID, anna.ID, 20)
	require.NoError(t, err)
	_, _, err = f.Contributions.CreateContribution(ctx, deleted.ID, anna.ID, 50)
	require.NoError(t, err)

	require.NoError(t, f.Campaigns.DeleteCampaign(ctx, deleted.ID))

	mine, err := f.Contributions.ListForParent(ctx, anna.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, kept.ID, mine[0].CampaignID)

	_, err = f.Contributions.Status(ctx, deleted.ID, "anna@example.com", "")
	assert.ErrorIs(t, err, ErrCampaignNotFound)

	_, err = f.Contributions.MarkPaid(ctx, deleted.ID, anna.ID, 50, "cash")
	assert.ErrorIs(t, err, ErrCampaignNotFound)

	_, err = f.Contributions.SubmitContribution(ctx, anna.ID, deleted.ID, 50, "")
	assert.ErrorIs(t, err, ErrCampaignNotFound)

	status, err := f.Contributions.Status(ctx, kept.ID, "anna@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, string(domain.ContributionPending), status.Status)
}
