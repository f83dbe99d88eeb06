package services_test

import (
	"testing"

	"github.com/apoaevents/badge_credits/models"
	"github.com/apoaevents/badge_credits/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedListing creates three credits: apprentice (100), master (300, two
// recipients) and wizard (200, one recipient).
func seedListing(t *testing.T, f *fixture) (apprentice, master, wizard *models.Credit) {
	badgeA := f.newBadge(t, "apprentice")
	badgeM := f.newBadge(t, "master")
	badgeW := f.newBadge(t, "wizard")

	apprentice = f.newCredit(t, badgeA.ID, services.CreditInput{Name: "Apprentice bonus", Price: 100, Enabled: true})
	master = f.newCredit(t, badgeM.ID, services.CreditInput{Name: "Master bonus", Price: 300, Enabled: true})
	wizard = f.newCredit(t, badgeW.ID, services.CreditInput{Name: "Wizard bonus", Price: 200, Enabled: true})

	alice := f.newLearner(t, "alice@example.com")
	bob := f.newLearner(t, "bob@example.com")

	require.NoError(t, f.awardBadge(t, badgeM.ID, alice.ID))
	require.NoError(t, f.awardBadge(t, badgeM.ID, bob.ID))
	require.NoError(t, f.awardBadge(t, badgeW.ID, bob.ID))
	return apprentice, master, wizard
}

func badgeNames(rows []services.CreditRow) []string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.BadgeName
	}
	return names
}

func TestList_DefaultSortIsBadgeAscending(t *testing.T) {
	f := newFixture(t)
	seedListing(t, f)

	rows, total, err := f.listing.List(services.ListParams{})
	require.NoError(t, err)

	assert.EqualValues(t, 3, total)
	assert.Equal(t, []string{"apprentice", "master", "wizard"}, badgeNames(rows))
}

func TestList_PriceDescending(t *testing.T) {
	f := newFixture(t)
	seedListing(t, f)

	rows, _, err := f.listing.List(services.ListParams{Sort: "price", Dir: "DESC"})
	require.NoError(t, err)

	require.Len(t, rows, 3)
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1].Price, rows[i].Price, "prices must be non-increasing")
	}
}

func TestList_InvalidDirNormalizesToAscending(t *testing.T) {
	f := newFixture(t)
	seedListing(t, f)

	rows, _, err := f.listing.List(services.ListParams{Sort: "price", Dir: "sideways"})
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.EqualValues(t, 100, rows[0].Price)
	assert.EqualValues(t, 300, rows[2].Price)
}

func TestList_NegativePageNormalizesToFirst(t *testing.T) {
	f := newFixture(t)
	seedListing(t, f)

	first, _, err := f.listing.List(services.ListParams{Page: 0, PerPage: 2})
	require.NoError(t, err)
	negative, _, err := f.listing.List(services.ListParams{Page: -3, PerPage: 2})
	require.NoError(t, err)

	assert.Equal(t, first, negative)
}

func TestList_Pagination_TotalIsUnpaginated(t *testing.T) {
	f := newFixture(t)
	seedListing(t, f)

	page0, total, err := f.listing.List(services.ListParams{PerPage: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page0, 2)

	page1, _, err := f.listing.List(services.ListParams{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, page1, 1)

	assert.NotEqual(t, page0[0].ID, page1[0].ID)
	assert.NotEqual(t, page0[1].ID, page1[0].ID)
}

func TestList_BadgeFilter(t *testing.T) {
	f := newFixture(t)
	_, master, _ := seedListing(t, f)

	rows, total, err := f.listing.List(services.ListParams{BadgeID: master.BadgeID})
	require.NoError(t, err)

	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, master.ID, rows[0].ID)
}

func TestList_RecipientAggregates(t *testing.T) {
	f := newFixture(t)
	apprentice, master, wizard := seedListing(t, f)

	rows, _, err := f.listing.List(services.ListParams{})
	require.NoError(t, err)

	byID := make(map[uuid.UUID]services.CreditRow)
	for _, r := range rows {
		byID[r.ID] = r
	}

	assert.EqualValues(t, 0, byID[apprentice.ID].RecipientCount)
	assert.Empty(t, byID[apprentice.ID].RecipientEmails)

	assert.EqualValues(t, 2, byID[master.ID].RecipientCount)
	assert.Equal(t, "alice@example.com\nbob@example.com", byID[master.ID].RecipientEmails)

	assert.EqualValues(t, 1, byID[wizard.ID].RecipientCount)
	assert.Equal(t, "bob@example.com", byID[wizard.ID].RecipientEmails)
}

func TestList_MissingBadgeShowsSentinel(t *testing.T) {
	f := newFixture(t)
	_, master, _ := seedListing(t, f)

	require.NoError(t, f.db.Delete(&models.Badge{}, "id = ?", master.BadgeID).Error)

	rows, _, err := f.listing.List(services.ListParams{Sort: "name"})
	require.NoError(t, err)

	byID := make(map[uuid.UUID]string)
	for _, r := range rows {
		byID[r.ID] = r.BadgeName
	}
	assert.Equal(t, services.MissingBadgeName, byID[master.ID])
}

func TestList_SortByRecipients(t *testing.T) {
	f := newFixture(t)
	apprentice, master, _ := seedListing(t, f)

	rows, _, err := f.listing.List(services.ListParams{Sort: "recipients", Dir: "DESC"})
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, master.ID, rows[0].ID)
	assert.Equal(t, apprentice.ID, rows[2].ID)
}
