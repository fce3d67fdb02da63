package shipmentwebhook

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/lokapasar/backend/internal/shipments"
	"github.com/lokapasar/backend/pkg/db/models"
	"github.com/lokapasar/backend/pkg/enums"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/lokapasar/backend/pkg/logger"
	"github.com/lokapasar/backend/pkg/signature"
)

// Callback is the carrier's status update envelope. The booking the event
// refers to lives under data.
type Callback struct {
	Event string       `json:"event"`
	Data  CallbackData `json:"data"`
}

// CallbackData carries the booking state reported by the carrier.
type CallbackData struct {
	BookingID      string                 `json:"id"`
	Status         string                 `json:"status"`
	TrackingNumber string                 `json:"courier_tracking_number"`
	History        []CallbackHistoryEntry `json:"history"`
}

// CallbackHistoryEntry is one carrier-side status transition.
type CallbackHistoryEntry struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// ServiceParams collects the handler's dependencies.
type ServiceParams struct {
	ShipmentsRepo shipments.Repository
	WebhookSecret string
	Logger        *logger.Logger
}

// Service applies carrier callbacks to the shipment state machine.
type Service struct {
	repo   shipments.Repository
	secret string
	logger *logger.Logger
	now    func() time.Time
}

// NewService builds the shipment webhook service.
func NewService(params ServiceParams) (*Service, error) {
	if params.ShipmentsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "shipments repo required")
	}
	if params.WebhookSecret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "webhook secret required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		repo:   params.ShipmentsRepo,
		secret: params.WebhookSecret,
		logger: params.Logger,
		now:    time.Now,
	}, nil
}

// HandleCallback verifies the raw body against the shared-secret signature
// and applies the update. Signature mismatches, unknown bookings and unknown
// carrier statuses resolve to a logged no-op; duplicates of the current
// status are dropped without touching the row.
func (s *Service) HandleCallback(ctx context.Context, body []byte, providedSignature string) error {
	if !signature.VerifyCarrier(body, s.secret, providedSignature) {
		s.logger.Warn(ctx, "carrier callback signature mismatch, ignoring")
		return nil
	}

	var callback Callback
	if err := json.Unmarshal(body, &callback); err != nil {
		s.logger.Warn(ctx, "malformed carrier callback, ignoring")
		return nil
	}
	ctx = s.logger.WithField(ctx, "booking_id", callback.Data.BookingID)

	next, ok := enums.ShipmentStatusFromCarrier(callback.Data.Status)
	if !ok {
		s.logger.Warn(ctx, "unrecognized carrier status, ignoring")
		return nil
	}

	shipment, err := s.repo.FindByBookingID(ctx, callback.Data.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn(ctx, "carrier callback for unknown booking, ignoring")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading shipment")
	}

	if shipment.Status == next && callback.Data.TrackingNumber == "" {
		return nil
	}

	shipment.Status = next
	if callback.Data.TrackingNumber != "" {
		shipment.TrackingNumber = &callback.Data.TrackingNumber
	}
	note := ""
	if n := len(callback.Data.History); n > 0 {
		note = callback.Data.History[n-1].Note
	}
	shipment.History = append(shipment.History, models.ShipmentHistoryEntry{
		Status:     string(next),
		Note:       note,
		ReportedAt: s.now().UTC(),
	})

	if err := s.repo.Update(ctx, shipment); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating shipment")
	}
	return nil
}
