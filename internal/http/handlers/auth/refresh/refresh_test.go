package refresh

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/martin-karani/subscription-manager-api/internal/lib/errs"
	"github.com/martin-karani/subscription-manager-api/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Refresh(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRefreshHandler_ServeHTTP(t *testing.T) {
	serviceMock := new(ServiceMock)
	logger := newNoopLogger()

	handler := New(logger, serviceMock)

	tests := []struct {
		name           string
		requestBody    interface{}
		mockToken      string
		mockErr        error
		wantStatusCode int
		wantData       map[string]any
		wantError      string
		wantStatus     string
	}{
		{
			name:           "valid refresh token",
			requestBody:    models.RefreshRequest{RefreshToken: "valid-refresh"},
			mockToken:      "new-access",
			wantStatusCode: http.StatusOK,
			wantData: map[string]any{
				"access_token": "new-access",
			},
			wantStatus: "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "missing refresh token",
			requestBody:    models.RefreshRequest{},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field RefreshToken is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "expired refresh token",
			requestBody:    models.RefreshRequest{RefreshToken: "expired"},
			mockErr:        errs.Unauthorized("Invalid or expired refresh token."),
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "Invalid or expired refresh token.",
			wantStatus:     "Error",
		},
		{
			name:           "access token passed instead of refresh",
			requestBody:    models.RefreshRequest{RefreshToken: "access-token"},
			mockErr:        errs.Unauthorized("Refresh token required."),
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "Refresh token required.",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock.ExpectedCalls = nil
			serviceMock.Calls = nil

			if tt.mockToken != "" || tt.mockErr != nil {
				serviceMock.On("Refresh", mock.Anything, tt.requestBody.(models.RefreshRequest).RefreshToken).
					Return(tt.mockToken, tt.mockErr).Once()
			}

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

			req := httptest.NewRequest(http.MethodPost, "/refresh", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			}

			if tt.wantData != nil {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				for k, v := range tt.wantData {
					assert.Equal(t, v, data[k])
				}
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
