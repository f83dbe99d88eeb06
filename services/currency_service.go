package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/apoaevents/badge_credits/ledger"
)

// CurrencyService caches the set of currencies the balance ledger can
// hold, so credit validation does not hit the ledger API on every form
// submission.
type CurrencyService struct {
	Ledger ledger.Service

	cacheMutex    sync.RWMutex
	currencyCache []string
	lastFetchTime time.Time
}

func NewCurrencyService(l ledger.Service) *CurrencyService {
	return &CurrencyService{Ledger: l}
}

func (s *CurrencyService) Supported(ctx context.Context) ([]string, error) {
	s.cacheMutex.RLock()
	if time.Since(s.lastFetchTime) < 6*time.Hour && s.currencyCache != nil {
		cached := s.currencyCache
		s.cacheMutex.RUnlock()
		return cached, nil
	}
	s.cacheMutex.RUnlock()

	log.Println("Fetching supported currencies from ledger API...")
	currencies, err := s.Ledger.SupportedCurrencies(ctx)
	if err != nil {
		s.cacheMutex.RLock()
		cached := s.currencyCache
		s.cacheMutex.RUnlock()
		if cached != nil {
			log.Printf("🔥 Currency refresh failed, serving stale cache: %v", err)
			return cached, nil
		}
		return nil, err
	}

	s.cacheMutex.Lock()
	s.currencyCache = currencies
	s.lastFetchTime = time.Now()
	s.cacheMutex.Unlock()

	return currencies, nil
}

func (s *CurrencyService) IsSupported(ctx context.Context, code string) (bool, error) {
	currencies, err := s.Supported(ctx)
	if err != nil {
		return false, err
	}
	for _, c := range currencies {
		if c == code {
			return true, nil
		}
	}
	return false, nil
}
