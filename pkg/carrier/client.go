// Package carrier is a thin HTTP client for the shipping aggregator's booking
// API. The carrier publishes no Go SDK, so the surface is hand-rolled.
package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lokapasar/backend/pkg/config"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/lokapasar/backend/pkg/logger"
)

var (
	errBaseURLRequired = errors.New("carrier base url is required")
	errAPIKeyRequired  = errors.New("carrier api key is required")
	errLoggerRequired  = errors.New("carrier logger is required")
)

// Client books shipments against the carrier's REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *logger.Logger
}

// BookingContact identifies one end of a shipment.
type BookingContact struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// BookingItem describes one parcel line.
type BookingItem struct {
	Name     string `json:"name"`
	Value    int64  `json:"value"`
	Weight   int    `json:"weight"`
	Quantity int    `json:"quantity"`
}

// BookingRequest is the carrier's order-creation payload.
type BookingRequest struct {
	ReferenceID string         `json:"reference_id"`
	Origin      BookingContact `json:"origin"`
	Destination BookingContact `json:"destination"`
	Items       []BookingItem  `json:"items"`
}

// Booking is the carrier's answer to a booking request. Raw retains the
// unparsed response body for audit.
type Booking struct {
	BookingID      string
	TrackingNumber string
	Courier        string
	Price          int64
	Raw            string
}

type bookingResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
	Courier        string `json:"courier"`
	Price          int64  `json:"price"`
}

// NewClient validates configuration and builds the carrier client.
func NewClient(ctx context.Context, cfg config.CarrierConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logg,
	}
	logg.Info(ctx, "carrier client initialized")
	return c, nil
}

// BookShipment creates a shipment order with the carrier.
func (c *Client) BookShipment(ctx context.Context, req BookingRequest) (*Booking, error) {
	if req.ReferenceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference id required")
	}
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one booking item required")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode booking request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build booking request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.apiKey)

	c.log(ctx, "request", "book_shipment", map[string]any{"reference_id": req.ReferenceID})

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log(ctx, "error", "book_shipment", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "carrier booking call failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read carrier response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log(ctx, "error", "book_shipment", map[string]any{
			"error":  fmt.Sprintf("carrier returned status %d", resp.StatusCode),
			"status": resp.StatusCode,
		})
		return nil, pkgerrors.New(codeForStatus(resp.StatusCode), fmt.Sprintf("carrier booking rejected with status %d", resp.StatusCode))
	}

	var decoded bookingResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode carrier response")
	}
	if decoded.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "carrier response missing booking id")
	}

	c.log(ctx, "response", "book_shipment", map[string]any{
		"booking_id": decoded.ID,
		"courier":    decoded.Courier,
	})

	return &Booking{
		BookingID:      decoded.ID,
		TrackingNumber: decoded.TrackingNumber,
		Courier:        decoded.Courier,
		Price:          decoded.Price,
		Raw:            string(body),
	}, nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("carrier %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("carrier %s", phase))
	}
}

func codeForStatus(status int) pkgerrors.Code {
	switch {
	case status == http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return pkgerrors.CodeUnauthorized
	case status >= 400 && status < 500:
		return pkgerrors.CodeValidation
	default:
		return pkgerrors.CodeDependency
	}
}
