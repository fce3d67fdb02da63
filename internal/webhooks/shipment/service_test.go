package shipmentwebhook

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lokapasar/backend/internal/shipments"
	"github.com/lokapasar/backend/pkg/db/models"
	"github.com/lokapasar/backend/pkg/enums"
	"github.com/lokapasar/backend/pkg/logger"
	"github.com/lokapasar/backend/pkg/signature"
)

const testSecret = "carrier-webhook-secret"

type stubShipmentsRepo struct {
	shipment *models.Shipment
	updated  *models.Shipment
}

func (s *stubShipmentsRepo) WithTx(*gorm.DB) shipments.Repository { return s }

func (s *stubShipmentsRepo) Create(context.Context, *models.Shipment) error { return nil }

func (s *stubShipmentsRepo) FindByBookingID(context.Context, string) (*models.Shipment, error) {
	if s.shipment == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.shipment, nil
}

func (s *stubShipmentsRepo) FindByOrderID(context.Context, uuid.UUID) (*models.Shipment, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubShipmentsRepo) Update(_ context.Context, shipment *models.Shipment) error {
	s.updated = shipment
	return nil
}

func (s *stubShipmentsRepo) FindVariantsWithSeller(context.Context, []uuid.UUID) ([]models.Variant, error) {
	return nil, nil
}

func newTestService(t *testing.T, repo shipments.Repository) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		ShipmentsRepo: repo,
		WebhookSecret: testSecret,
		Logger:        logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	return svc
}

func signedBody(t *testing.T, callback Callback) ([]byte, string) {
	t.Helper()
	body, err := json.Marshal(callback)
	require.NoError(t, err)
	return body, signature.Carrier(body, testSecret)
}

func statusCallback(bookingID, status string) Callback {
	return Callback{
		Event: "order.status",
		Data:  CallbackData{BookingID: bookingID, Status: status},
	}
}

func awaitingShipment() *models.Shipment {
	return &models.Shipment{
		ID:        uuid.New(),
		OrderID:   uuid.New(),
		BookingID: "bk-123",
		Status:    enums.ShipmentStatusAwaitingPickup,
		Courier:   "jne",
	}
}

func TestHandleCallback_AdvancesStatusAndAppendsHistory(t *testing.T) {
	t.Parallel()

	repo := &stubShipmentsRepo{shipment: awaitingShipment()}
	svc := newTestService(t, repo)

	body, sig := signedBody(t, Callback{
		Event: "order.status",
		Data: CallbackData{
			BookingID:      "bk-123",
			Status:         "picked",
			TrackingNumber: "TRK-778899",
			History: []CallbackHistoryEntry{
				{Status: "confirmed", Note: "courier assigned"},
				{Status: "picked", Note: "package collected"},
			},
		},
	})
	require.NoError(t, svc.HandleCallback(context.Background(), body, sig))

	require.NotNil(t, repo.updated)
	assert.Equal(t, enums.ShipmentStatusPickedUp, repo.updated.Status)
	require.NotNil(t, repo.updated.TrackingNumber)
	assert.Equal(t, "TRK-778899", *repo.updated.TrackingNumber)
	require.Len(t, repo.updated.History, 1)
	assert.Equal(t, string(enums.ShipmentStatusPickedUp), repo.updated.History[0].Status)
	assert.Equal(t, "package collected", repo.updated.History[0].Note)
}

func TestHandleCallback_DecodesEnvelopedWirePayload(t *testing.T) {
	t.Parallel()

	repo := &stubShipmentsRepo{shipment: awaitingShipment()}
	svc := newTestService(t, repo)

	body := []byte(`{"event":"order.status","data":{"id":"bk-123","status":"picked","courier_tracking_number":"TRK-1","history":[{"status":"picked","note":"driver has the parcel"}]}}`)
	sig := signature.Carrier(body, testSecret)
	require.NoError(t, svc.HandleCallback(context.Background(), body, sig))

	require.NotNil(t, repo.updated)
	assert.Equal(t, enums.ShipmentStatusPickedUp, repo.updated.Status)
	require.NotNil(t, repo.updated.TrackingNumber)
	assert.Equal(t, "TRK-1", *repo.updated.TrackingNumber)
	require.Len(t, repo.updated.History, 1)
	assert.Equal(t, "driver has the parcel", repo.updated.History[0].Note)
}

func TestHandleCallback_BadSignatureIsSilentNoOp(t *testing.T) {
	t.Parallel()

	repo := &stubShipmentsRepo{shipment: awaitingShipment()}
	svc := newTestService(t, repo)

	body, _ := signedBody(t, statusCallback("bk-123", "picked"))
	require.NoError(t, svc.HandleCallback(context.Background(), body, "forged"))
	assert.Nil(t, repo.updated)
}

func TestHandleCallback_UnknownBookingIsNoOp(t *testing.T) {
	t.Parallel()

	repo := &stubShipmentsRepo{}
	svc := newTestService(t, repo)

	body, sig := signedBody(t, statusCallback("bk-missing", "picked"))
	require.NoError(t, svc.HandleCallback(context.Background(), body, sig))
	assert.Nil(t, repo.updated)
}

func TestHandleCallback_UnknownStatusIsNoOp(t *testing.T) {
	t.Parallel()

	repo := &stubShipmentsRepo{shipment: awaitingShipment()}
	svc := newTestService(t, repo)

	body, sig := signedBody(t, statusCallback("bk-123", "teleported"))
	require.NoError(t, svc.HandleCallback(context.Background(), body, sig))
	assert.Nil(t, repo.updated)
}

func TestHandleCallback_DuplicateStatusIsNoOp(t *testing.T) {
	t.Parallel()

	shipment := awaitingShipment()
	shipment.Status = enums.ShipmentStatusInTransit
	repo := &stubShipmentsRepo{shipment: shipment}
	svc := newTestService(t, repo)

	body, sig := signedBody(t, statusCallback("bk-123", "dropping_off"))
	require.NoError(t, svc.HandleCallback(context.Background(), body, sig))
	assert.Nil(t, repo.updated)
}

func TestHandleCallback_TerminalStates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		carrierStatus string
		want          enums.ShipmentStatus
	}{
		{carrierStatus: "delivered", want: enums.ShipmentStatusDelivered},
		{carrierStatus: "returned", want: enums.ShipmentStatusReturned},
		{carrierStatus: "cancelled", want: enums.ShipmentStatusCancelled},
		{carrierStatus: "courier_not_found", want: enums.ShipmentStatusCancelled},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.carrierStatus, func(t *testing.T) {
			t.Parallel()

			repo := &stubShipmentsRepo{shipment: awaitingShipment()}
			svc := newTestService(t, repo)

			body, sig := signedBody(t, statusCallback("bk-123", tt.carrierStatus))
			require.NoError(t, svc.HandleCallback(context.Background(), body, sig))
			require.NotNil(t, repo.updated)
			assert.Equal(t, tt.want, repo.updated.Status)
		})
	}
}
