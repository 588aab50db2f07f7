package commissions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/lifestylelure/payouts/internal/domain"
	"github.com/lifestylelure/payouts/internal/dto"
	"github.com/lifestylelure/payouts/internal/service/balanceservice"
	"github.com/lifestylelure/payouts/pkg/auth"
)

const userID = "11111111-1111-4111-8111-111111111111"

func NewMock(t *testing.T) (*CommissionHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	return handler, service
}

func withUser(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), auth.UserIDKey, userID))
}

func TestGetBalanceHandler(t *testing.T) {
	handler, service := NewMock(t)
	tests := []struct {
		name         string
		prepareMock  func()
		expectedCode int
		expectedBody dto.BalanceResponseDTO
	}{
		{
			name: "Successful retrieval",
			prepareMock: func() {
				service.EXPECT().GetBalance(gomock.Any(), userID).Return(decimal.RequireFromString("12.4"), nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: dto.BalanceResponseDTO{CommissionBalance: "12.40"},
		},
		{
			name: "Profile not found",
			prepareMock: func() {
				service.EXPECT().GetBalance(gomock.Any(), userID).Return(decimal.Zero, balanceservice.ErrProfileNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name: "Internal server error",
			prepareMock: func() {
				service.EXPECT().GetBalance(gomock.Any(), userID).Return(decimal.Zero, errors.New("error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := withUser(httptest.NewRequest(http.MethodGet, "/api/user/balance", nil))
			w := httptest.NewRecorder()
			handler.GetBalance(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body dto.BalanceResponseDTO
				_ = json.NewDecoder(w.Body).Decode(&body)
				assert.Equal(t, tt.expectedBody, body)
			}
		})
	}
}

func TestGetBalanceHandlerWithoutUser(t *testing.T) {
	handler, _ := NewMock(t)
	w := httptest.NewRecorder()
	handler.GetBalance(w, httptest.NewRequest(http.MethodGet, "/api/user/balance", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetCommissionsHandler(t *testing.T) {
	handler, service := NewMock(t)
	createdAt := time.Date(2024, 12, 9, 16, 9, 57, 0, time.UTC)

	tests := []struct {
		name         string
		prepareMock  func()
		expectedCode int
		expectedBody []dto.CommissionResponseDTO
	}{
		{
			name: "Commissions found",
			prepareMock: func() {
				service.EXPECT().GetCommissions(gomock.Any(), userID).Return([]domain.CommissionRecord{
					{EventID: "evt_1", RecipientID: userID, SourcePayer: "payer@example.com", Amount: decimal.RequireFromString("3"), Reason: domain.ReasonDirect, CreatedAt: createdAt},
					{EventID: "evt_0", RecipientID: userID, SourcePayer: "other@example.com", Amount: decimal.RequireFromString("0.4"), Reason: domain.ReasonScoutOverride, CreatedAt: createdAt},
				}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: []dto.CommissionResponseDTO{
				{EventID: "evt_1", SourcePayer: "payer@example.com", Amount: "3.00", Reason: "direct", CreatedAt: createdAt},
				{EventID: "evt_0", SourcePayer: "other@example.com", Amount: "0.40", Reason: "scout_override", CreatedAt: createdAt},
			},
		},
		{
			name: "No commissions",
			prepareMock: func() {
				service.EXPECT().GetCommissions(gomock.Any(), userID).Return(nil, nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			name: "Internal server error",
			prepareMock: func() {
				service.EXPECT().GetCommissions(gomock.Any(), userID).Return(nil, errors.New("error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := withUser(httptest.NewRequest(http.MethodGet, "/api/user/commissions", nil))
			w := httptest.NewRecorder()
			handler.GetCommissions(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body []dto.CommissionResponseDTO
				_ = json.NewDecoder(w.Body).Decode(&body)
				assert.Equal(t, tt.expectedBody, body)
			}
		})
	}
}
