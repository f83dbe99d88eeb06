package services

import (
	"strings"
	"time"

	"github.com/apoaevents/badge_credits/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultPerPage = 10

	// Shown in place of the badge name when the badge record is gone.
	MissingBadgeName = "(badge no longer exists)"
)

type ListParams struct {
	BadgeID uuid.UUID // uuid.Nil lists credits for every badge
	Sort    string    // name | badge | recipients | price
	Dir     string    // ASC | DESC
	Page    int       // zero-based
	PerPage int
}

// CreditRow is a credit enriched with badge metadata and issuance
// aggregates for the management page.
type CreditRow struct {
	ID              uuid.UUID `json:"id"`
	BadgeID         uuid.UUID `json:"badge_id"`
	Name            string    `json:"name"`
	Price           int64     `json:"price"`
	Currency        string    `json:"currency"`
	MaxIssues       int       `json:"max_issues"`
	Enabled         bool      `json:"enabled"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	BadgeName       string    `json:"badge_name"`
	RecipientCount  int64     `json:"recipient_count"`
	RecipientEmails string    `json:"recipient_emails" gorm:"-"`
}

type ListingService struct {
	DB *gorm.DB
}

// List returns one page of enriched credit rows plus the unpaginated
// total for the pagination bar. The credit id is always the secondary
// sort key so pages stay stable.
func (s *ListingService) List(p ListParams) ([]CreditRow, int64, error) {
	p = normalize(p)

	base := s.DB.Model(&models.Credit{})
	if p.BadgeID != uuid.Nil {
		base = base.Where("credits.badge_id = ?", p.BadgeID)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []CreditRow
	err := base.Session(&gorm.Session{}).
		Select("credits.*, COALESCE(badges.name, '') AS badge_name, COALESCE(ic.recipient_count, 0) AS recipient_count").
		Joins("LEFT JOIN badges ON badges.id = credits.badge_id").
		Joins("LEFT JOIN (SELECT credit_id, COUNT(*) AS recipient_count FROM credit_issuances GROUP BY credit_id) ic ON ic.credit_id = credits.id").
		Order(orderClause(p.Sort, p.Dir)).
		Limit(p.PerPage).
		Offset(p.Page * p.PerPage).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	for i := range rows {
		if rows[i].BadgeName == "" {
			rows[i].BadgeName = MissingBadgeName
		}
	}

	if err := s.attachEmails(rows); err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// attachEmails loads the recipient emails for the page's credits in one
// query and joins them per credit, newline separated.
func (s *ListingService) attachEmails(rows []CreditRow) error {
	if len(rows) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}

	type recipient struct {
		CreditID uuid.UUID
		Email    string
	}
	var recipients []recipient
	err := s.DB.Model(&models.CreditIssuance{}).
		Select("credit_issuances.credit_id, users.email").
		Joins("INNER JOIN users ON users.id = credit_issuances.user_id").
		Where("credit_issuances.credit_id IN ?", ids).
		Order("users.email ASC").
		Scan(&recipients).Error
	if err != nil {
		return err
	}

	byCredit := make(map[uuid.UUID][]string)
	for _, r := range recipients {
		byCredit[r.CreditID] = append(byCredit[r.CreditID], r.Email)
	}
	for i := range rows {
		rows[i].RecipientEmails = strings.Join(byCredit[rows[i].ID], "\n")
	}
	return nil
}

func normalize(p ListParams) ListParams {
	switch p.Sort {
	case "name", "badge", "recipients", "price":
	default:
		p.Sort = "badge"
	}
	if p.Dir != "DESC" {
		p.Dir = "ASC"
	}
	if p.Page < 0 {
		p.Page = 0
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	return p
}

func orderClause(sort, dir string) string {
	var column string
	switch sort {
	case "name":
		column = "credits.name"
	case "recipients":
		column = "recipient_count"
	case "price":
		column = "credits.price"
	default:
		column = "badge_name"
	}
	return column + " " + dir + ", credits.id ASC"
}
