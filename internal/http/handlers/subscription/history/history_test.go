package history

import (
	"context"
	"encoding/json"
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
	"github.com/martin-karani/subscription-manager-api/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) History(ctx context.Context, userID, page, perPage int) (*models.SubscriptionHistory, error) {
	args := m.Called(ctx, userID, page, perPage)
	history, _ := args.Get(0).(*models.SubscriptionHistory)
	return history, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestHistoryHandler_ServeHTTP(t *testing.T) {
	logger := newNoopLogger()

	now := time.Now().UTC()
	end := now.AddDate(0, 0, 30)
	page := &models.SubscriptionHistory{
		Items: []*models.SubscriptionWithPlan{
			{
				SubscriptionID:        8,
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
			},
			{
				SubscriptionID:        3,
				UserID:                42,
				PlanID:                1,
				StartDate:             now.AddDate(0, -1, 0),
				EndDate:               &now,
				Status:                models.SubscriptionStatusUpgraded,
				AutoRenew:             false,
				SubscriptionCreatedAt: now.AddDate(0, -1, 0),
				PlanName:              "Basic Monthly",
				PlanPrice:             decimal.RequireFromString("9.99"),
				PlanDurationDays:      30,
			},
		},
		Pagination: models.Pagination{
			TotalItems:   2,
			CurrentPage:  1,
			ItemsPerPage: 10,
			TotalPages:   1,
		},
	}

	tests := []struct {
		name           string
		query          string
		ctxUserID      any
		setupMock      func(m *ServiceMock)
		wantStatusCode int
		wantError      string
	}{
		{
			name:      "default pagination",
			query:     "",
			ctxUserID: 42,
			setupMock: func(m *ServiceMock) {
				m.On("History", mock.Anything, 42, 1, 10).Return(page, nil).Once()
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:      "explicit page and size",
			query:     "?page=2&per_page=5",
			ctxUserID: 42,
			setupMock: func(m *ServiceMock) {
				m.On("History", mock.Anything, 42, 2, 5).Return(page, nil).Once()
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:      "garbage pagination falls back to defaults",
			query:     "?page=abc&per_page=xyz",
			ctxUserID: 42,
			setupMock: func(m *ServiceMock) {
				m.On("History", mock.Anything, 42, 1, 10).Return(page, nil).Once()
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "no user in context",
			query:          "",
			ctxUserID:      nil,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			tt.setupMock(serviceMock)

			handler := New(logger, serviceMock)

			req := httptest.NewRequest(http.MethodGet, "/subscriptions/history"+tt.query, nil)
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
			data, ok := got["data"].(map[string]any)
			assert.True(t, ok)

			items, ok := data["items"].([]any)
			assert.True(t, ok)
			assert.Len(t, items, 2)

			first, ok := items[0].(map[string]any)
			assert.True(t, ok)
			assert.Equal(t, float64(8), first["subscription_id"])
			assert.Equal(t, "Pro Monthly", first["plan_name"])

			pagination, ok := data["pagination"].(map[string]any)
			assert.True(t, ok)
			assert.Equal(t, float64(2), pagination["total_items"])
			assert.Equal(t, float64(1), pagination["current_page"])
			assert.Equal(t, float64(10), pagination["items_per_page"])
			assert.Equal(t, float64(1), pagination["total_pages"])

			serviceMock.AssertExpectations(t)
		})
	}
}
