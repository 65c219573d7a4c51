package upgrade

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

func (m *ServiceMock) Upgrade(ctx context.Context, userID, newPlanID int) (*models.Subscription, error) {
	args := m.Called(ctx, userID, newPlanID)
	sub, _ := args.Get(0).(*models.Subscription)
	return sub, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestUpgradeHandler_ServeHTTP(t *testing.T) {
	logger := newNoopLogger()

	now := time.Now().UTC()
	end := now.AddDate(0, 0, 30)
	upgraded := &models.Subscription{
		ID:        11,
		UserID:    42,
		PlanID:    7,
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
			name:        "successful upgrade",
			requestBody: models.UpgradeRequest{NewPlanID: 7},
			ctxUserID:   42,
			setupMock: func(m *ServiceMock) {
				m.On("Upgrade", mock.Anything, 42, 7).Return(upgraded, nil).Once()
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing new plan id",
			requestBody:    models.UpgradeRequest{},
			ctxUserID:      42,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field NewPlanID is a required field",
		},
		{
			name:           "no user in context",
			requestBody:    models.UpgradeRequest{NewPlanID: 7},
			ctxUserID:      nil,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
		},
		{
			name:        "already on this plan",
			requestBody: models.UpgradeRequest{NewPlanID: 7},
			ctxUserID:   42,
			setupMock: func(m *ServiceMock) {
				m.On("Upgrade", mock.Anything, 42, 7).
					Return(nil, errs.Conflict("User is already subscribed to this plan.")).Once()
			},
			wantStatusCode: http.StatusConflict,
			wantError:      "User is already subscribed to this plan.",
		},
		{
			name:        "new plan inactive",
			requestBody: models.UpgradeRequest{NewPlanID: 8},
			ctxUserID:   42,
			setupMock: func(m *ServiceMock) {
				m.On("Upgrade", mock.Anything, 42, 8).
					Return(nil, errs.Conflictf("New plan '%s' is not active and cannot be upgraded to.", "Legacy")).Once()
			},
			wantStatusCode: http.StatusConflict,
			wantError:      "New plan 'Legacy' is not active and cannot be upgraded to.",
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

			req := httptest.NewRequest(http.MethodPost, "/subscriptions/upgrade", bytes.NewReader(bodyBytes))
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
				assert.Equal(t, float64(7), data["plan_id"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
