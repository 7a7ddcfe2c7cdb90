package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSignInEscapesAPIKey(t *testing.T) {
	const apiKey = "AIza/k-e+y&with=reserved chars"

	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		w.Write([]byte(`{"idToken":"t","refreshToken":"r","localId":"uid-1","email":"a@example.com"}`))
	}))
	defer srv.Close()

	p := &Provider{
		apiKey:     apiKey,
		baseURL:    srv.URL,
		httpClient: srv.Client(),
	}
	if _, err := p.SignIn(context.Background(), "a@example.com", "secret"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if gotKey != apiKey {
		t.Errorf("server received key %q; want %q", gotKey, apiKey)
	}
}

func TestSignIn(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		response    string
		expectedUID string
		errContains string
	}{
		{
			name:   "successful sign-in",
			status: http.StatusOK,
			response: `{"idToken":"id-token","refreshToken":"refresh-token",
				"expiresIn":"3600","localId":"uid-123","email":"a@example.com"}`,
			expectedUID: "uid-123",
		},
		{
			name:        "provider error message surfaces verbatim",
			status:      http.StatusBadRequest,
			response:    `{"error":{"message":"INVALID_PASSWORD"}}`,
			errContains: "INVALID_PASSWORD",
		},
		{
			name:        "opaque failure",
			status:      http.StatusInternalServerError,
			response:    `not json`,
			errContains: "status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			var gotBody map[string]any
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				json.NewDecoder(r.Body).Decode(&gotBody)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.response))
			}))
			defer srv.Close()

			p := &Provider{
				apiKey:     "test-key",
				baseURL:    srv.URL,
				httpClient: srv.Client(),
			}

			cred, err := p.SignIn(context.Background(), "a@example.com", "secret")
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("SignIn error = %v; want containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("SignIn: %v", err)
			}
			if cred.UID != tt.expectedUID {
				t.Errorf("uid = %s; want %s", cred.UID, tt.expectedUID)
			}
			if cred.IDToken == "" || cred.RefreshToken == "" {
				t.Errorf("tokens not populated: %+v", cred)
			}
			if gotPath != "/v1/accounts:signInWithPassword" {
				t.Errorf("path = %s; want /v1/accounts:signInWithPassword", gotPath)
			}
			if gotBody["returnSecureToken"] != true {
				t.Errorf("returnSecureToken = %v; want true", gotBody["returnSecureToken"])
			}
		})
	}
}
