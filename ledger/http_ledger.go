package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	config "github.com/apoaevents/badge_credits/configs"
	"github.com/google/uuid"
)

type GrantRequest struct {
	UserID   string `json:"user_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type GrantResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type CurrenciesResponse struct {
	Status     string   `json:"status"`
	Currencies []string `json:"currencies"`
}

// HTTPService talks to the platform's balance ledger over its REST API.
type HTTPService struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewHTTPService() *HTTPService {
	return &HTTPService{
		BaseURL: config.Config("LEDGER_BASE_URL"),
		APIKey:  config.Config("LEDGER_API_KEY"),
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPService) Grant(ctx context.Context, userID uuid.UUID, amount int64, currency string) error {
	payload := GrantRequest{
		UserID:   userID.String(),
		Amount:   amount,
		Currency: currency,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal grant payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.BaseURL+"/api/v1/balance/grant", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create grant request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send grant request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read grant response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("ledger grant failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var grantResp GrantResponse
	if err := json.Unmarshal(respBody, &grantResp); err != nil {
		return fmt.Errorf("failed to parse grant response: %v", err)
	}
	if grantResp.Status != "success" {
		return fmt.Errorf("ledger rejected grant: %s", grantResp.Message)
	}

	return nil
}

func (s *HTTPService) SupportedCurrencies(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.BaseURL+"/api/v1/balance/currencies", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create currencies request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supported currencies: %v", err)
	}
	defer resp.Body.Close()

	var data CurrenciesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse currencies response: %v", err)
	}

	if data.Status != "success" {
		return nil, fmt.Errorf("ledger currencies API returned an error")
	}

	return data.Currencies, nil
}
