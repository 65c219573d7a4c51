package subscribe

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/martin-karani/subscription-manager-api/internal/http/middlewarectx"
	"github.com/martin-karani/subscription-manager-api/internal/lib/errs"
	"github.com/martin-karani/subscription-manager-api/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Subscribe(ctx context.Context, userID, planID int) (*models.Subscription, error) {
	args := m.Called(ctx, userID, planID)
	sub, _ := args.Get(0).(*models.Subscription)
	return sub, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSubscribeHandler_ServeHTTP(t *testing.T) {
	logger := newNoopLogger()

	now := time.Now().UTC()
	end := now.AddDate(0, 0, 30)
	subscription := &models.Subscription{
		ID:        10,
		UserID:    42,
		PlanID:    3,
		StartDate: now,
		EndDate:   &end,
		Status:    models.SubscriptionStatusActive,
		AutoRenew: true,
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		ctxUserID      any
		setupMock      func(m *ServiceMock)
		wantStatusCode int
		wantError      string
	}{
		{
			name:        "successful subscription",
			requestBody: models.SubscribeRequest{PlanID: 3},
			ctxUserID:   42,
			setupMock: func(m *ServiceMock) {
				m.On("Subscribe", mock.Anything, 42, 3).Return(subscription, nil).Once()
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			ctxUserID:      42,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "missing plan id",
			requestBody:    models.SubscribeRequest{},
			ctxUserID:      42,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field PlanID is a required field",
		},
		{
			name:           "no user in context",
			requestBody:    models.SubscribeRequest{PlanID: 3},
			ctxUserID:      nil,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
		},
		{
			name:        "plan not found",
			requestBody: models.SubscribeRequest{PlanID: 999},
			ctxUserID:   42,
			setupMock: func(m *ServiceMock) {
				m.On("Subscribe", mock.Anything, 42, 999).
					Return(nil, errs.NotFoundf("Subscription Plan with ID %d not found.", 999)).Once()
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      "Subscription Plan with ID 999 not found.",
		},
		{
			name:        "inactive plan",
			requestBody: models.SubscribeRequest{PlanID: 5},
			ctxUserID:   42,
			setupMock: func(m *ServiceMock) {
				m.On("Subscribe", mock.Anything, 42, 5).
					Return(nil, errs.Conflictf("Plan '%s' is not active and cannot be subscribed to.", "Legacy")).Once()
			},
			wantStatusCode: http.StatusConflict,
			wantError:      "Plan 'Legacy' is not active and cannot be subscribed to.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			tt.setupMock(serviceMock)

			handler := New(logger, serviceMock)

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/subscriptions/subscribe", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.ctxUserID != nil {
				ctx = context.WithValue(ctx, middlewarectx.UserID, tt.ctxUserID)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req.WithContext(ctx))

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			if tt.wantError != "" {
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.Equal(t, "OK", got["status"])
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, float64(10), data["id"])
				assert.Equal(t, string(models.SubscriptionStatusActive), data["status"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
