package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPaymentStore struct{ mock.Mock }

func (m *mockPaymentStore) ExistsSince(ctx context.Context, userID uint64, amount float64, since time.Time) (bool, error) {
	args := m.Called(ctx, userID, amount, since)
	return args.Bool(0), args.Error(1)
}

func (m *mockPaymentStore) Create(ctx context.Context, paymentID string, userID uint64, amount float64) error {
	return m.Called(ctx, paymentID, userID, amount).Error(0)
}

func confirmPayment(t *testing.T, store PaymentStore, userID any, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/confirm", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != nil {
		// The JWT middleware stores numeric claims as float64.
		c.Set("user_id", userID)
	}
	require.NoError(t, NewPaymentHandler(store).Confirm(c))
	return rec
}

func TestConfirmRecordsFirstPaymentOfDay(t *testing.T) {
	store := &mockPaymentStore{}
	store.On("ExistsSince", mock.Anything, uint64(9), 25.0, mock.MatchedBy(func(ts time.Time) bool {
		return ts.Hour() == 0 && ts.Minute() == 0 && ts.Second() == 0
	})).Return(false, nil).Once()
	store.On("Create", mock.Anything, mock.MatchedBy(func(id string) bool {
		return strings.HasPrefix(id, "pay_")
	}), uint64(9), 25.0).Return(nil).Once()

	rec := confirmPayment(t, store, float64(9), `{"amount":25}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Contains(t, out["payment_id"], "pay_")
	store.AssertExpectations(t)
}

func TestConfirmSameDayDuplicateIsNotReinserted(t *testing.T) {
	store := &mockPaymentStore{}
	store.On("ExistsSince", mock.Anything, uint64(9), 25.0, mock.Anything).
		Return(true, nil).Once()

	rec := confirmPayment(t, store, float64(9), `{"amount":25}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, true, out["duplicate"])
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestConfirmRejectsNonPositiveAmount(t *testing.T) {
	store := &mockPaymentStore{}

	rec := confirmPayment(t, store, float64(9), `{"amount":0}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	store.AssertNotCalled(t, "ExistsSince", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmRequiresIdentity(t *testing.T) {
	store := &mockPaymentStore{}

	rec := confirmPayment(t, store, nil, `{"amount":25}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConfirmLookupFailure(t *testing.T) {
	store := &mockPaymentStore{}
	store.On("ExistsSince", mock.Anything, uint64(9), 25.0, mock.Anything).
		Return(false, assert.AnError).Once()

	rec := confirmPayment(t, store, float64(9), `{"amount":25}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
