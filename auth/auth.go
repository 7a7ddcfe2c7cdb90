// Package auth is the identity-provider boundary: account creation through
// the Firebase Admin SDK, password sign-in through the Identity Toolkit REST
// API, and in-memory session state with change listeners.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

const identityToolkitBaseURL = "https://identitytoolkit.googleapis.com"

// Credential is a successfully authenticated identity.
type Credential struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string
}

type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Provider authenticates email/password credentials against Firebase.
type Provider struct {
	app        *firebase.App
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewProvider builds a Provider. apiKey is the web API key used by the
// Identity Toolkit REST endpoints; opts carry admin credentials.
func NewProvider(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Provider, error) {
	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("auth: initializing firebase app: %w", err)
	}
	return &Provider{
		app:        app,
		apiKey:     apiKey,
		baseURL:    identityToolkitBaseURL,
		httpClient: http.DefaultClient,
	}, nil
}

// CreateAccount registers a new email/password account, then signs it in so
// the caller ends up with a live credential.
func (p *Provider) CreateAccount(ctx context.Context, email, password string) (Credential, error) {
	client, err := p.app.Auth(ctx)
	if err != nil {
		return Credential{}, fmt.Errorf("auth: getting auth client: %w", err)
	}
	params := (&fbauth.UserToCreate{}).Email(email).Password(password)
	if _, err := client.CreateUser(ctx, params); err != nil {
		return Credential{}, fmt.Errorf("auth: creating account: %w", err)
	}
	return p.SignIn(ctx, email, password)
}

// SignIn exchanges an email/password pair for tokens via the Identity
// Toolkit accounts:signInWithPassword endpoint. Provider failures carry the
// provider's own message; the UI renders it verbatim.
func (p *Provider) SignIn(ctx context.Context, email, password string) (Credential, error) {
	signInURL := p.baseURL + "/v1/accounts:signInWithPassword?" + url.Values{"key": {p.apiKey}}.Encode()
	payload := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return Credential{}, fmt.Errorf("auth: marshaling sign-in payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signInURL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return Credential{}, fmt.Errorf("auth: building sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Credential{}, fmt.Errorf("auth: calling identity toolkit: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Credential{}, fmt.Errorf("auth: reading sign-in response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return Credential{}, fmt.Errorf("auth: sign-in rejected: %s", apiErr.Error.Message)
		}
		return Credential{}, fmt.Errorf("auth: sign-in failed with status %d", resp.StatusCode)
	}

	var signIn signInResponse
	if err := json.Unmarshal(body, &signIn); err != nil {
		return Credential{}, fmt.Errorf("auth: decoding sign-in response: %w", err)
	}
	return Credential{
		UID:          signIn.LocalID,
		Email:        signIn.Email,
		IDToken:      signIn.IDToken,
		RefreshToken: signIn.RefreshToken,
	}, nil
}
