package paymongo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the PayMongo REST API. Only checkout-session creation is
// needed here; webhook deliveries come back in on our own HTTP surface.
type Client struct {
	baseURL    string
	secretKey  string
	successURL string
	cancelURL  string
	httpc      *http.Client
}

func NewClient(baseURL, secretKey, successURL, cancelURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		secretKey:  secretKey,
		successURL: successURL,
		cancelURL:  cancelURL,
		httpc:      &http.Client{Timeout: 15 * time.Second},
	}
}

type CheckoutSession struct {
	CheckoutURL     string
	ReferenceNumber string
}

type lineItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Amount   int64  `json:"amount"` // centavos
	Currency string `json:"currency"`
}

// CreateCheckoutSession opens a hosted checkout for a single line item.
// Amount is in centavos, currency is PHP, methods are gcash and card.
func (c *Client) CreateCheckoutSession(ctx context.Context, name string, amount int64, quantity int) (*CheckoutSession, error) {
	if name == "" {
		name = "GCash Purchase"
	}
	if amount <= 0 {
		amount = 5000
	}
	if quantity <= 0 {
		quantity = 1
	}

	payload := map[string]any{
		"data": map[string]any{
			"attributes": map[string]any{
				"line_items": []lineItem{{
					Name:     name,
					Quantity: quantity,
					Amount:   amount,
					Currency: "PHP",
				}},
				"payment_method_types": []string{"gcash", "card"},
				"success_url":          c.successURL,
				"cancel_url":           c.cancelURL,
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkout_sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	// Basic auth: username = secret key, empty password
	req.SetBasicAuth(c.secretKey, "")

	res, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("paymongo create checkout session failed: %s (%d)", string(raw), res.StatusCode)
	}

	var out struct {
		Data struct {
			ID         string `json:"id"`
			Attributes struct {
				CheckoutURL     string `json:"checkout_url"`
				ReferenceNumber string `json:"reference_number"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse checkout session json: %w", err)
	}

	cs := &CheckoutSession{
		CheckoutURL:     out.Data.Attributes.CheckoutURL,
		ReferenceNumber: out.Data.Attributes.ReferenceNumber,
	}
	// Older API versions omit reference_number; the session id correlates
	// webhooks just as well.
	if cs.ReferenceNumber == "" {
		cs.ReferenceNumber = out.Data.ID
	}
	return cs, nil
}
