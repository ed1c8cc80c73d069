// Package tradingclient calls the trading service on behalf of a buyer.
package tradingclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/tradefund/pkg/logging"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(tradingURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(tradingURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type Line struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Currency  string    `json:"currency"`
}

type Destination struct {
	Country    string `json:"country"`
	State      string `json:"state"`
	City       string `json:"city"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	Incoterm   string `json:"incoterm"`
}

// String renders the destination as a single line for order notes.
func (d Destination) String() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{d.Address, d.City, d.State, d.PostalCode, d.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	s := strings.Join(parts, ", ")
	if inc := strings.TrimSpace(d.Incoterm); inc != "" {
		if s != "" {
			s += " "
		}
		s += "(" + strings.ToUpper(inc) + ")"
	}
	return s
}

type DraftRequest struct {
	Items       []Line      `json:"items"`
	Destination Destination `json:"destination"`
	Notes       string      `json:"notes"`
}

type orderRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Currency  string    `json:"currency"`
	Notes     string    `json:"notes"`
}

type orderResponse struct {
	ID uuid.UUID `json:"id"`
}

// StatusError is a non-2xx answer from the trading service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("trading: status %d: %s", e.Code, e.Body)
}

// unavailable reports whether the draft endpoint is missing on the server, as opposed to
// the request itself being rejected. Only a failed dial proves that nothing reached the
// server; any other transport or decode error may follow a created order.
func unavailable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusNotFound || se.Code == http.StatusMethodNotAllowed || se.Code == http.StatusNotImplemented
	}
	var op *net.OpError
	return errors.As(err, &op) && op.Op == "dial"
}

// PlaceOrders creates one DRAFT order with every line. When the draft endpoint is not
// available it falls back to one single-line order per item, with the destination and
// notes copied into each order's notes. It returns the ids of every order it created,
// including the ones created before a fallback failure.
func (c *Client) PlaceOrders(ctx context.Context, accessToken string, req DraftRequest) ([]uuid.UUID, error) {
	if len(req.Items) == 0 {
		return nil, errors.New("trading: no items")
	}
	l := logging.FromContext(ctx).With("client", "trading.place_orders")

	var draft orderResponse
	err := c.post(ctx, accessToken, "/trading/orders/draft", req, &draft)
	if err == nil {
		return []uuid.UUID{draft.ID}, nil
	}
	if !unavailable(err) {
		return nil, err
	}
	l.Warn("draft_order_unavailable", "reason", "falling back to single-item orders", "items", len(req.Items), "error", err)

	notes := fallbackNotes(req)
	ids := make([]uuid.UUID, 0, len(req.Items))
	for i, line := range req.Items {
		var o orderResponse
		err := c.post(ctx, accessToken, "/trading/orders", orderRequest{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Currency:  line.Currency,
			Notes:     notes,
		}, &o)
		if err != nil {
			l.Error("fallback_order_error", "item", i, "created", len(ids), "error", err)
			return ids, fmt.Errorf("item %d: %w", i, err)
		}
		ids = append(ids, o.ID)
	}
	return ids, nil
}

func fallbackNotes(req DraftRequest) string {
	var b strings.Builder
	if dest := req.Destination.String(); dest != "" {
		b.WriteString("Ship to: ")
		b.WriteString(dest)
	}
	if n := strings.TrimSpace(req.Notes); n != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(n)
	}
	return b.String()
}

func (c *Client) post(ctx context.Context, accessToken, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
