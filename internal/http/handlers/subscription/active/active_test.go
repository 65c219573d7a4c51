package active

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/martin-karani/subscription-manager-api/internal/http/middlewarectx"
	"github.com/martin-karani/subscription-manager-api/internal/http/response"
	"github.com/martin-karani/subscription-manager-api/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) GetActive(ctx context.Context, userID int) (*models.SubscriptionWithPlan, error) {
	args := m.Called(ctx, userID)
	sub, _ := args.Get(0).(*models.SubscriptionWithPlan)
	return sub, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestActiveHandler_ServeHTTP(t *testing.T) {
	logger := newNoopLogger()

	now := time.Now().UTC()
	end := now.AddDate(0, 0, 30)
	activeSub := &models.SubscriptionWithPlan{
		SubscriptionID:        5,
		UserID:                42,
		PlanID:                2,
		StartDate:             now,
		EndDate:               &end,
		Status:                models.SubscriptionStatusActive,
		AutoRenew:             true,
		SubscriptionCreatedAt: now,
		PlanName:              "Pro Monthly",
		PlanPrice:             decimal.RequireFromString("29.99"),
		PlanDurationDays:      30,
	}

	tests := []struct {
		name           string
		ctxUserID      any
		setupMock      func(m *ServiceMock)
		wantStatusCode int
		wantError      string
		wantData       bool
	}{
		{
			name:      "active subscription found",
			ctxUserID: 42,
			setupMock: func(m *ServiceMock) {
				m.On("GetActive", mock.Anything, 42).Return(activeSub, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantData:       true,
		},
		{
			name:      "no active subscription",
			ctxUserID: 42,
			setupMock: func(m *ServiceMock) {
				m.On("GetActive", mock.Anything, 42).Return(nil, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantData:       false,
		},
		{
			name:           "no user in context",
			ctxUserID:      nil,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
		},
		{
			name:      "storage failure",
			ctxUserID: 42,
			setupMock: func(m *ServiceMock) {
				m.On("GetActive", mock.Anything, 42).
					Return(nil, errors.New("connection refused")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      response.MsgInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			tt.setupMock(serviceMock)

			handler := New(logger, serviceMock)

			req := httptest.NewRequest(http.MethodGet, "/subscriptions/active", nil)
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.ctxUserID != nil {
				ctx = context.WithValue(ctx, middlewarectx.UserID, tt.ctxUserID)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req.WithContext(ctx))

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			if tt.wantError != "" {
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
				serviceMock.AssertExpectations(t)
				return
			}

			assert.Equal(t, "OK", got["status"])
			if tt.wantData {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, float64(5), data["subscription_id"])
				assert.Equal(t, "Pro Monthly", data["plan_name"])
				assert.Equal(t, "active", data["status"])
			} else {
				_, present := got["data"]
				assert.False(t, present)
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
