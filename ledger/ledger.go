package ledger

import (
	"context"

	"github.com/google/uuid"
)

// Service is the platform's spendable-balance ledger. Grant adds amount
// (in the smallest unit of currency) to the user's account balance.
type Service interface {
	Grant(ctx context.Context, userID uuid.UUID, amount int64, currency string) error
	SupportedCurrencies(ctx context.Context) ([]string, error)
}
