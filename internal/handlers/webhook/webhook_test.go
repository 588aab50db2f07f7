package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/lifestylelure/payouts/internal/domain"
	"github.com/lifestylelure/payouts/internal/dto"
	verifier "github.com/lifestylelure/payouts/internal/webhook"
)

const signature = "t=1700000000,v1=abc"

func NewMock(t *testing.T) (*WebhookHandler, *MockVerifier, *MockService) {
	ctrl := gomock.NewController(t)
	v := NewMockVerifier(ctrl)
	service := NewMockService(ctrl)
	handler := New(v, service)
	return handler, v, service
}

func TestHandle(t *testing.T) {
	body := `{"id":"evt_1","type":"checkout.session.completed"}`
	event := domain.BillingEvent{
		ID:     "evt_1",
		Type:   string(domain.EventNewSubscription),
		Kind:   domain.EventNewSubscription,
		Amount: decimal.RequireFromString("15.00"),
	}

	tests := []struct {
		name           string
		body           string
		prepareMock    func(v *MockVerifier, s *MockService)
		expectedCode   int
		expectedStatus string
	}{
		{
			name: "Processed",
			body: body,
			prepareMock: func(v *MockVerifier, s *MockService) {
				v.EXPECT().Verify([]byte(body), signature).Return(event, nil)
				s.EXPECT().Process(gomock.Any(), event).Return(domain.OutcomeProcessed, nil)
			},
			expectedCode:   http.StatusOK,
			expectedStatus: "processed",
		},
		{
			name: "Duplicate",
			body: body,
			prepareMock: func(v *MockVerifier, s *MockService) {
				v.EXPECT().Verify(gomock.Any(), signature).Return(event, nil)
				s.EXPECT().Process(gomock.Any(), event).Return(domain.OutcomeDuplicate, nil)
			},
			expectedCode:   http.StatusOK,
			expectedStatus: "duplicate",
		},
		{
			name: "No referrer",
			body: body,
			prepareMock: func(v *MockVerifier, s *MockService) {
				v.EXPECT().Verify(gomock.Any(), signature).Return(event, nil)
				s.EXPECT().Process(gomock.Any(), event).Return(domain.OutcomeNoReferrer, nil)
			},
			expectedCode:   http.StatusOK,
			expectedStatus: "no_referrer",
		},
		{
			name: "Invalid signature",
			body: body,
			prepareMock: func(v *MockVerifier, _ *MockService) {
				v.EXPECT().Verify(gomock.Any(), signature).Return(domain.BillingEvent{}, fmt.Errorf("%w: bad mac", verifier.ErrInvalidSignature))
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Malformed payload",
			body: body,
			prepareMock: func(v *MockVerifier, _ *MockService) {
				v.EXPECT().Verify(gomock.Any(), signature).Return(domain.BillingEvent{}, fmt.Errorf("%w: no id", verifier.ErrMalformedPayload))
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Transient failure",
			body: body,
			prepareMock: func(v *MockVerifier, s *MockService) {
				v.EXPECT().Verify(gomock.Any(), signature).Return(event, nil)
				s.EXPECT().Process(gomock.Any(), event).Return(domain.Outcome(""), errors.New("db down"))
			},
			expectedCode: http.StatusInternalServerError,
		},
		{
			name:         "Body too large",
			body:         `{"pad":"` + strings.Repeat("x", MaxBodyBytes) + `"}`,
			prepareMock:  func(*MockVerifier, *MockService) {},
			expectedCode: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, v, service := NewMock(t)
			tt.prepareMock(v, service)

			r := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(tt.body))
			r.Header.Set(verifier.SignatureHeader, signature)
			w := httptest.NewRecorder()

			handler.Handle(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var resp dto.WebhookResponseDTO
				assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.True(t, resp.Received)
				assert.Equal(t, tt.expectedStatus, resp.Status)
			}
		})
	}
}
