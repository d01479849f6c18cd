package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"driveshare/config"
	"driveshare/utils"

	"go.uber.org/zap"
)

// FirebaseProvider talks to the Identity Toolkit REST API with a browser-style
// API key, the same way the web client does.
type FirebaseProvider struct {
	APIKey     string
	BaseURL    string
	TokenURL   string
	HTTPClient *http.Client
}

// NewFirebaseProvider builds a provider from the loaded application config.
func NewFirebaseProvider() *FirebaseProvider {
	cfg := config.AppConfig
	return &FirebaseProvider{
		APIKey:     cfg.IdentityAPIKey,
		BaseURL:    cfg.IdentityBaseURL,
		TokenURL:   cfg.TokenURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type firebaseAuthResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type firebaseErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// friendlyAuthMessage maps provider error codes to the messages the product
// shows users. Unrecognized codes get a generic failure message.
func friendlyAuthMessage(code string) string {
	switch {
	case code == "EMAIL_EXISTS":
		return "Email already registered"
	case code == "EMAIL_NOT_FOUND", code == "INVALID_PASSWORD", code == "INVALID_LOGIN_CREDENTIALS":
		return "Invalid email or password"
	case code == "INVALID_EMAIL":
		return "Invalid email address"
	case code == "USER_DISABLED":
		return "This account has been disabled"
	case strings.HasPrefix(code, "WEAK_PASSWORD"):
		return "Password should be at least 6 characters"
	case strings.HasPrefix(code, "TOO_MANY_ATTEMPTS_TRY_LATER"):
		return "Too many attempts. Please try again later."
	default:
		return "Authentication failed, please try again"
	}
}

// call posts a JSON payload to an Identity Toolkit endpoint and decodes the
// auth response, mapping provider rejections to AuthError.
func (p *FirebaseProvider) call(ctx context.Context, endpoint string, payload any) (*firebaseAuthResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/%s?key=%s", p.BaseURL, endpoint, url.QueryEscape(p.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		utils.GetLogger().Warn("Identity provider unreachable", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, utils.NewAuthError("NETWORK", utils.NetworkErrorMessage)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var fbErr firebaseErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&fbErr)
		code := fbErr.Error.Message
		utils.GetLogger().Warn("Identity provider rejected request",
			zap.String("endpoint", endpoint),
			zap.String("code", code),
		)
		return nil, utils.NewAuthError(code, friendlyAuthMessage(code))
	}

	var authResp firebaseAuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return nil, utils.NewAuthError("BAD_RESPONSE", "Authentication failed, please try again")
	}
	return &authResp, nil
}

// credential converts a provider response into a Credential, filling gaps
// from the ID token's claims.
func (p *FirebaseProvider) credential(resp *firebaseAuthResponse) *Credential {
	cred := &Credential{
		UID:          resp.LocalID,
		Email:        resp.Email,
		DisplayName:  resp.DisplayName,
		PhotoURL:     resp.PhotoURL,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
	}
	if secs, err := strconv.Atoi(resp.ExpiresIn); err == nil {
		cred.ExpiresAt = time.Now().Add(time.Duration(secs) * time.Second)
	}
	if cred.UID == "" || cred.Email == "" || cred.DisplayName == "" {
		uid, email, name, picture := tokenClaims(resp.IDToken)
		if cred.UID == "" {
			cred.UID = uid
		}
		if cred.Email == "" {
			cred.Email = email
		}
		if cred.DisplayName == "" {
			cred.DisplayName = name
		}
		if cred.PhotoURL == "" {
			cred.PhotoURL = picture
		}
	}
	return cred
}

func (p *FirebaseProvider) SignUp(ctx context.Context, email, password, displayName, photoURL string) (*Credential, error) {
	resp, err := p.call(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}

	// Attach the profile in a follow-up update, as the web SDK does.
	if displayName != "" || photoURL != "" {
		updated, err := p.call(ctx, "accounts:update", map[string]any{
			"idToken":           resp.IDToken,
			"displayName":       displayName,
			"photoUrl":          photoURL,
			"returnSecureToken": true,
		})
		if err != nil {
			return nil, err
		}
		updated.LocalID = resp.LocalID
		updated.Email = resp.Email
		if updated.IDToken == "" {
			updated.IDToken = resp.IDToken
		}
		if updated.RefreshToken == "" {
			updated.RefreshToken = resp.RefreshToken
		}
		if updated.ExpiresIn == "" {
			updated.ExpiresIn = resp.ExpiresIn
		}
		return p.credential(updated), nil
	}
	return p.credential(resp), nil
}

func (p *FirebaseProvider) SignInWithPassword(ctx context.Context, email, password string) (*Credential, error) {
	resp, err := p.call(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}
	return p.credential(resp), nil
}

func (p *FirebaseProvider) SignInWithIDP(ctx context.Context, providerID, idToken string) (*Credential, error) {
	postBody := url.Values{}
	postBody.Set("id_token", idToken)
	postBody.Set("providerId", providerID)
	resp, err := p.call(ctx, "accounts:signInWithIdp", map[string]any{
		"postBody":            postBody.Encode(),
		"requestUri":          "http://localhost",
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	})
	if err != nil {
		return nil, err
	}
	return p.credential(resp), nil
}

// RefreshCredential exchanges a refresh token at the secure token endpoint.
func (p *FirebaseProvider) RefreshCredential(ctx context.Context, refreshToken string) (*Credential, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	reqURL := fmt.Sprintf("%s?key=%s", p.TokenURL, url.QueryEscape(p.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return nil, utils.NewAuthError("NETWORK", utils.NetworkErrorMessage)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var fbErr firebaseErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&fbErr)
		return nil, utils.NewAuthError(fbErr.Error.Message, "Your session has expired. Please sign in again.")
	}

	var tokenResp struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
		UserID       string `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, utils.NewAuthError("BAD_RESPONSE", "Authentication failed, please try again")
	}

	cred := &Credential{
		UID:          tokenResp.UserID,
		IDToken:      tokenResp.IDToken,
		RefreshToken: tokenResp.RefreshToken,
	}
	if secs, err := strconv.Atoi(tokenResp.ExpiresIn); err == nil {
		cred.ExpiresAt = time.Now().Add(time.Duration(secs) * time.Second)
	}
	uid, email, name, picture := tokenClaims(tokenResp.IDToken)
	if cred.UID == "" {
		cred.UID = uid
	}
	cred.Email = email
	cred.DisplayName = name
	cred.PhotoURL = picture
	return cred, nil
}
