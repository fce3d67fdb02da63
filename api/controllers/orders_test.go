package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderssvc "github.com/lokapasar/backend/internal/orders"
	"github.com/lokapasar/backend/pkg/db/models"
	"github.com/lokapasar/backend/pkg/enums"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
)

type stubOrdersService struct {
	detail *orderssvc.DetailDTO
	err    error
}

func (s *stubOrdersService) GetByOrderNumber(context.Context, uuid.UUID, string) (*orderssvc.DetailDTO, error) {
	return s.detail, s.err
}

type stubPaymentsService struct {
	payment *models.Payment
	err     error

	retriedOrderNumber string
}

func (s *stubPaymentsService) CreateSession(context.Context, *models.Order) (*models.Payment, error) {
	return s.payment, s.err
}

func (s *stubPaymentsService) RetrySession(_ context.Context, _ uuid.UUID, orderNumber string) (*models.Payment, error) {
	s.retriedOrderNumber = orderNumber
	return s.payment, s.err
}

func orderRouter(detail http.HandlerFunc, retry http.HandlerFunc) chi.Router {
	r := chi.NewRouter()
	r.Route("/orders/{orderNumber}", func(r chi.Router) {
		if detail != nil {
			r.Get("/", detail)
		}
		if retry != nil {
			r.Post("/retry-payment", retry)
		}
	})
	return r
}

func TestOrderDetail_ReturnsReadModel(t *testing.T) {
	t.Parallel()

	svc := &stubOrdersService{
		detail: &orderssvc.DetailDTO{
			ID:          uuid.New(),
			OrderNumber: "LP-20260830-A1B2C3",
			Status:      enums.OrderStatusPaid,
			TotalAmount: 153000,
			Items:       []orderssvc.ItemDTO{},
		},
	}
	router := orderRouter(OrderDetail(svc, testLogger()), nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest(http.MethodGet, "/orders/LP-20260830-A1B2C3", ""))

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope struct {
		Data orderssvc.DetailDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "LP-20260830-A1B2C3", envelope.Data.OrderNumber)
	assert.Equal(t, enums.OrderStatusPaid, envelope.Data.Status)
}

func TestOrderDetail_NotFound(t *testing.T) {
	t.Parallel()

	svc := &stubOrdersService{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	router := orderRouter(OrderDetail(svc, testLogger()), nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest(http.MethodGet, "/orders/LP-NOPE", ""))

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestOrderRetryPayment_OpensNewSession(t *testing.T) {
	t.Parallel()

	svc := &stubPaymentsService{
		payment: &models.Payment{
			SnapToken:   "retry-token",
			RedirectURL: "https://app.sandbox.midtrans.com/snap/v4/redirection/retry-token",
			Status:      enums.PaymentStatusPending,
		},
	}
	router := orderRouter(nil, OrderRetryPayment(svc, testLogger()))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest(http.MethodPost, "/orders/LP-20260830-A1B2C3/retry-payment", ""))

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, "LP-20260830-A1B2C3", svc.retriedOrderNumber)

	var envelope struct {
		Data paymentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "retry-token", envelope.Data.SnapToken)
}

func TestOrderRetryPayment_StateConflictWhenNotRetryable(t *testing.T) {
	t.Parallel()

	svc := &stubPaymentsService{
		err: pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment"),
	}
	router := orderRouter(nil, OrderRetryPayment(svc, testLogger()))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest(http.MethodPost, "/orders/LP-20260830-A1B2C3/retry-payment", ""))

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}
