package planread

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/martin-karani/subscription-manager-api/internal/lib/errs"
	"github.com/martin-karani/subscription-manager-api/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) GetPlan(ctx context.Context, id int) (*models.Plan, error) {
	args := m.Called(ctx, id)
	plan, _ := args.Get(0).(*models.Plan)
	return plan, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestReadPlanHandler_ServeHTTP(t *testing.T) {
	logger := newNoopLogger()

	plan := &models.Plan{
		ID:           7,
		Name:         "Basic Annual",
		Price:        decimal.RequireFromString("99.99"),
		DurationDays: 365,
		IsActive:     true,
	}

	tests := []struct {
		name           string
		idParam        string
		setupMock      func(m *ServiceMock)
		wantStatusCode int
		wantError      string
		wantPlanName   string
	}{
		{
			name:    "plan found",
			idParam: "7",
			setupMock: func(m *ServiceMock) {
				m.On("GetPlan", mock.Anything, 7).Return(plan, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantPlanName:   "Basic Annual",
		},
		{
			name:           "non-numeric id",
			idParam:        "abc",
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "failed to decode id from url",
		},
		{
			name:    "plan not found",
			idParam: "999",
			setupMock: func(m *ServiceMock) {
				m.On("GetPlan", mock.Anything, 999).
					Return(nil, errs.NotFoundf("Subscription Plan with ID %d not found.", 999)).Once()
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      "Subscription Plan with ID 999 not found.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			tt.setupMock(serviceMock)

			handler := New(logger, serviceMock)

			req := httptest.NewRequest(http.MethodGet, "/plans/"+tt.idParam, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.idParam)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req.WithContext(ctx))

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			if tt.wantError != "" {
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.Equal(t, "OK", got["status"])
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, tt.wantPlanName, data["name"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
