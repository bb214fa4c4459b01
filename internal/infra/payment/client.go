// Package payment implements the hosted-checkout payment provider client.
//
// The provider exposes three calls: create a checkout session, retrieve a
// session (with the nested product expanded), and list a session's line
// items. Session metadata is the side channel that carries the order intent
// across the customer's redirect.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
)

var _ ports.PaymentGateway = (*Client)(nil)

type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// NewClient builds a provider client. The explicit timeout bounds every
// provider call; the SDK default of no deadline is not acceptable mid-checkout.
func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

// metadataProductIDKey is the key under which the internal product id is
// embedded in the provider's product metadata, so the verifier can map
// purchased lines back to the catalog.
const metadataProductIDKey = "product_id"

type sessionResponse struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
}

type lineItemResponse struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitAmount  int64  `json:"unit_amount"`
	Product     struct {
		Name     string            `json:"name"`
		Metadata map[string]string `json:"metadata"`
	} `json:"product"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) CreateSession(ctx context.Context, in ports.CreateSessionInput) (*ports.CheckoutSession, error) {
	type lineItem struct {
		Name            string            `json:"name"`
		UnitAmount      int64             `json:"unit_amount"`
		Quantity        int               `json:"quantity"`
		ProductMetadata map[string]string `json:"product_metadata"`
	}
	body := struct {
		LineItems  []lineItem        `json:"line_items"`
		SuccessURL string            `json:"success_url"`
		CancelURL  string            `json:"cancel_url"`
		Metadata   map[string]string `json:"metadata"`
	}{
		SuccessURL: in.SuccessURL,
		CancelURL:  in.CancelURL,
		Metadata:   in.Metadata,
	}
	for _, l := range in.Lines {
		body.LineItems = append(body.LineItems, lineItem{
			Name:       l.Name,
			UnitAmount: l.UnitAmount,
			Quantity:   l.Quantity,
			ProductMetadata: map[string]string{
				metadataProductIDKey: strconv.FormatInt(l.ProductID, 10),
			},
		})
	}

	var sess sessionResponse
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", body, &sess); err != nil {
		return nil, err
	}
	return mapSession(&sess), nil
}

func (c *Client) GetSession(ctx context.Context, sessionID string) (*ports.CheckoutSession, error) {
	var sess sessionResponse
	path := "/v1/checkout/sessions/" + sessionID + "?expand=line_items.data.product"
	if err := c.do(ctx, http.MethodGet, path, nil, &sess); err != nil {
		return nil, err
	}
	return mapSession(&sess), nil
}

func (c *Client) ListLineItems(ctx context.Context, sessionID string) ([]ports.SessionLineItem, error) {
	var resp struct {
		Data []lineItemResponse `json:"data"`
	}
	path := "/v1/checkout/sessions/" + sessionID + "/line_items?expand=data.product"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	items := make([]ports.SessionLineItem, 0, len(resp.Data))
	for _, li := range resp.Data {
		item := ports.SessionLineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitAmount:  li.UnitAmount,
			ProductName: li.Product.Name,
		}
		// A missing or unparsable product id leaves zero; the verifier's
		// reconciliation chain handles that case.
		if raw, ok := li.Product.Metadata[metadataProductIDKey]; ok {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				item.ProductID = id
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("payment: encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("payment: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("payment: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr errorResponse
		msg := resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return fmt.Errorf("%w: %s", entity.ErrPaymentProcessing, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("payment: decode response: %w", err)
	}
	return nil
}

func mapSession(s *sessionResponse) *ports.CheckoutSession {
	return &ports.CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: s.PaymentStatus,
		AmountTotal:   s.AmountTotal,
		Currency:      s.Currency,
		Metadata:      s.Metadata,
	}
}
