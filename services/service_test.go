package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/apoaevents/badge_credits/events"
	"github.com/apoaevents/badge_credits/models"
	"github.com/apoaevents/badge_credits/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Badge{},
		&models.BadgeIssue{},
		&models.Credit{},
		&models.CreditIssuance{},
	)
	require.NoError(t, err)
	return db
}

type grant struct {
	UserID   uuid.UUID
	Amount   int64
	Currency string
}

// fakeLedger records grants and can be told to fail, standing in for the
// platform's balance service.
type fakeLedger struct {
	mu         sync.Mutex
	grants     []grant
	grantErr   error
	currencies []string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{currencies: []string{"EUR", "GBP", "USD"}}
}

func (f *fakeLedger) Grant(ctx context.Context, userID uuid.UUID, amount int64, currency string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.grantErr != nil {
		return f.grantErr
	}
	f.grants = append(f.grants, grant{UserID: userID, Amount: amount, Currency: currency})
	return nil
}

func (f *fakeLedger) SupportedCurrencies(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currencies, nil
}

func (f *fakeLedger) grantCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.grants)
}

// eventRecorder captures everything published on the bus.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) named(name string) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func recordAll(bus *events.Bus, rec *eventRecorder) {
	for _, name := range []string{
		events.BadgeAwarded, events.BadgeDeleted,
		events.CreditCreated, events.CreditUpdated, events.CreditDeleted, events.CreditAwarded,
	} {
		bus.Subscribe(name, rec.record)
	}
}

type fixture struct {
	db      *gorm.DB
	bus     *events.Bus
	ledger  *fakeLedger
	rec     *eventRecorder
	credits *services.CreditService
	awards  *services.AwardService
	listing *services.ListingService
	admin   models.User
}

func newFixture(t *testing.T) *fixture {
	db := newTestDB(t)
	bus := events.NewBus()
	lg := newFakeLedger()
	rec := &eventRecorder{}
	recordAll(bus, rec)

	admin := models.User{FullName: "Site Admin", Email: "admin@example.com", Password: "x", Role: "admin", IsActive: true}
	require.NoError(t, db.Create(&admin).Error)

	f := &fixture{
		db:     db,
		bus:    bus,
		ledger: lg,
		rec:    rec,
		admin:  admin,
	}
	f.credits = &services.CreditService{
		DB:         db,
		Bus:        bus,
		Access:     &services.RoleAccessPolicy{DB: db},
		Currencies: services.NewCurrencyService(lg),
	}
	f.awards = &services.AwardService{DB: db, Bus: bus, Ledger: lg}
	f.awards.Register()
	f.listing = &services.ListingService{DB: db}
	return f
}

func (f *fixture) newBadge(t *testing.T, name string) models.Badge {
	badge := models.Badge{Name: name, Description: name + " badge", IconURL: "https://badges.example.com/" + name + ".png"}
	require.NoError(t, f.db.Create(&badge).Error)
	return badge
}

func (f *fixture) newLearner(t *testing.T, email string) models.User {
	user := models.User{FullName: "Learner", Email: email, Password: "x", Role: "student", IsActive: true}
	require.NoError(t, f.db.Create(&user).Error)
	return user
}

func (f *fixture) newCredit(t *testing.T, badgeID uuid.UUID, input services.CreditInput) *models.Credit {
	input.BadgeID = badgeID
	if input.Name == "" {
		input.Name = "Credit"
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}
	credit, err := f.credits.Create(context.Background(), f.admin.ID, input)
	require.NoError(t, err)
	return credit
}

func (f *fixture) issuanceCount(t *testing.T, creditID uuid.UUID) int64 {
	var count int64
	require.NoError(t, f.db.Model(&models.CreditIssuance{}).Where("credit_id = ?", creditID).Count(&count).Error)
	return count
}

func (f *fixture) awardBadge(t *testing.T, badgeID, userID uuid.UUID) error {
	issue := models.BadgeIssue{BadgeID: badgeID, UserID: userID}
	require.NoError(t, f.db.Create(&issue).Error)
	return f.bus.Publish(events.Event{Name: events.BadgeAwarded, ObjectID: badgeID, RelatedUserID: userID})
}
