// Package midtrans wraps the Midtrans Snap SDK with centralized logging and
// error mapping for the checkout pipeline.
package midtrans

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mt "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/lokapasar/backend/pkg/config"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/lokapasar/backend/pkg/logger"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"
)

var (
	errServerKeyRequired = errors.New("midtrans server key is required")
	errLoggerRequired    = errors.New("midtrans logger is required")
	errInvalidEnv        = fmt.Errorf("midtrans environment must be %q or %q", sandboxEnv, productionEnv)
)

// Client exposes Snap session creation with centralized auth, logging, and
// error mapping.
type Client struct {
	snap        snap.Client
	serverKey   string
	environment string
	logger      *logger.Logger
}

// SessionParams carries everything the gateway needs to open a hosted
// payment page for an order.
type SessionParams struct {
	ExternalOrderID string
	GrossAmount     int64
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	Items           []SessionItem
}

// SessionItem is a display line on the hosted payment page.
type SessionItem struct {
	ID       string
	Name     string
	Price    int64
	Quantity int32
}

// Session is the gateway's answer to a session request.
type Session struct {
	Token       string
	RedirectURL string
}

// NewClient initializes the Snap wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.MidtransConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	serverKey := strings.TrimSpace(cfg.ServerKey)
	if serverKey == "" {
		return nil, errServerKeyRequired
	}
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	mtEnv := mt.Sandbox
	if env == productionEnv {
		mtEnv = mt.Production
	}

	c := &Client{
		serverKey:   serverKey,
		environment: env,
		logger:      logg,
	}
	c.snap.New(serverKey, mtEnv)

	logg.Info(ctx, "midtrans client initialized")
	return c, nil
}

// ServerKey returns the configured server key, used for notification
// signature checks.
func (c *Client) ServerKey() string {
	if c == nil {
		return ""
	}
	return c.serverKey
}

// Environment reports the normalized Midtrans environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// CreateSession opens a Snap transaction for the given order.
func (c *Client) CreateSession(ctx context.Context, params SessionParams) (*Session, error) {
	if params.ExternalOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external order id required")
	}
	if params.GrossAmount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gross amount must be positive")
	}

	items := make([]mt.ItemDetails, 0, len(params.Items))
	for _, item := range params.Items {
		items = append(items, mt.ItemDetails{
			ID:    item.ID,
			Name:  item.Name,
			Price: item.Price,
			Qty:   item.Quantity,
		})
	}

	req := &snap.Request{
		TransactionDetails: mt.TransactionDetails{
			OrderID:  params.ExternalOrderID,
			GrossAmt: params.GrossAmount,
		},
		CustomerDetail: &mt.CustomerDetails{
			FName: params.CustomerName,
			Email: params.CustomerEmail,
			Phone: params.CustomerPhone,
		},
		Items: &items,
	}

	c.log(ctx, "request", "create_session", map[string]any{
		"external_order_id": params.ExternalOrderID,
		"gross_amount":      params.GrossAmount,
	})

	resp, mtErr := c.snap.CreateTransaction(req)
	if mtErr != nil {
		c.log(ctx, "error", "create_session", map[string]any{"error": mtErr.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, mtErr, "midtrans create session failed")
	}

	c.log(ctx, "response", "create_session", map[string]any{
		"external_order_id": params.ExternalOrderID,
	})
	return &Session{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
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
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("midtrans %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("midtrans %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"token", "secret", "email", "phone", "key"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = sandboxEnv
	}
	switch env {
	case sandboxEnv, productionEnv:
		return env, nil
	default:
		return "", errInvalidEnv
	}
}
