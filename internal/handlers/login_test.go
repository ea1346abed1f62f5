package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestLoginHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name         string
		body         string
		mockSetup    func(m *MockAuthenticator)
		expectedCode int
		expectedBody string
	}{
		{
			name: "success by identifier",
			body: `{"identifier":"alice","password":"Secret123!"}`,
			mockSetup: func(m *MockAuthenticator) {
				m.EXPECT().Login(gomock.Any(), "alice", "Secret123!").Return("token-123", nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"token":"token-123"}`,
		},
		{
			name: "email field accepted",
			body: `{"email":"alice@x.com","password":"Secret123!"}`,
			mockSetup: func(m *MockAuthenticator) {
				m.EXPECT().Login(gomock.Any(), "alice@x.com", "Secret123!").Return("token-123", nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"token":"token-123"}`,
		},
		{
			name: "wrong password",
			body: `{"identifier":"alice","password":"nope"}`,
			mockSetup: func(m *MockAuthenticator) {
				m.EXPECT().Login(gomock.Any(), "alice", "nope").Return("", models.ErrInvalidCredentials)
			},
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"status":"fail","message":"Invalid credentials"}`,
		},
		{
			name: "unknown identifier",
			body: `{"identifier":"bob","password":"Secret123!"}`,
			mockSetup: func(m *MockAuthenticator) {
				m.EXPECT().Login(gomock.Any(), "bob", "Secret123!").Return("", models.ErrInvalidCredentials)
			},
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"status":"fail","message":"Invalid credentials"}`,
		},
		{
			name:         "empty body",
			body:         "",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"status":"fail","message":"Invalid input","fields":{"body":"request body is empty"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockAuthenticator(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			req := httptest.NewRequest(http.MethodPost, "/users/login", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			NewLoginHandler(mockSvc)(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
		})
	}
}
