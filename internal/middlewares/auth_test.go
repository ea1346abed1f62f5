package middlewares

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAuthMiddleware(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()

	tests := []struct {
		name             string
		mockSetup        func(e *MockTokenExtractor, v *MockTokenVerifier)
		expectedStatus   int
		expectedMessage  string
		expectNextCalled bool
	}{
		{
			name: "NoToken",
			mockSetup: func(e *MockTokenExtractor, v *MockTokenVerifier) {
				e.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).
					Return("", errors.New("no token"))
			},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Unauthorized",
		},
		{
			name: "ExpiredToken",
			mockSetup: func(e *MockTokenExtractor, v *MockTokenVerifier) {
				e.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("sometoken", nil)
				v.EXPECT().VerifyToken(gomock.Any(), "sometoken").Return(uuid.Nil, models.ErrTokenExpired)
			},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Unauthorized",
		},
		{
			name: "RevokedToken",
			mockSetup: func(e *MockTokenExtractor, v *MockTokenVerifier) {
				e.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("sometoken", nil)
				v.EXPECT().VerifyToken(gomock.Any(), "sometoken").Return(uuid.Nil, models.ErrTokenRevoked)
			},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Unauthorized",
		},
		{
			name: "RevocationListDown",
			mockSetup: func(e *MockTokenExtractor, v *MockTokenVerifier) {
				e.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("sometoken", nil)
				v.EXPECT().VerifyToken(gomock.Any(), "sometoken").Return(uuid.Nil, models.ErrStoreUnavailable)
			},
			expectedStatus:  http.StatusServiceUnavailable,
			expectedMessage: "Service unavailable",
		},
		{
			name: "ValidToken",
			mockSetup: func(e *MockTokenExtractor, v *MockTokenVerifier) {
				e.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("validtoken", nil)
				v.EXPECT().VerifyToken(gomock.Any(), "validtoken").Return(userID, nil)
			},
			expectedStatus:   http.StatusOK,
			expectNextCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := NewMockTokenExtractor(ctrl)
			verifier := NewMockTokenVerifier(ctrl)
			tt.mockSetup(extractor, verifier)

			nextCalled := false
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				id, ok := UserIDFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, userID, id)
				token, ok := TokenFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, "validtoken", token)
				w.WriteHeader(http.StatusOK)
			})

			handler := AuthMiddleware(extractor, verifier)(nextHandler)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectNextCalled, nextCalled)
			if tt.expectedMessage != "" {
				var body errorBody
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
				assert.Equal(t, tt.expectedMessage, body.Message)
			}
		})
	}
}

func TestUserIDFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := UserIDFromContext(req.Context())
	assert.False(t, ok)

	id := uuid.New()
	got, ok := UserIDFromContext(WithUserID(req.Context(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}
