package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mycloudbox/mycloudbox/internal/config"
	"github.com/mycloudbox/mycloudbox/internal/ctxkeys"
	"github.com/mycloudbox/mycloudbox/internal/model"
	"github.com/mycloudbox/mycloudbox/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

const oauthStateCookie = "oauth_state"

type oauthProvider struct {
	config *oauth2.Config
	// fetchProfile returns the verified email and display name
	fetchProfile func(ctx context.Context, client *http.Client) (email, name string, err error)
}

type AuthHandler struct {
	authService *service.AuthService
	appURL      string
	providers   map[string]*oauthProvider
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *AuthHandler {
	h := &AuthHandler{
		authService: authService,
		appURL:      strings.TrimSuffix(cfg.AppURL, "/"),
		providers:   make(map[string]*oauthProvider),
	}

	if cfg.OAuthEnabled("google") {
		h.providers["google"] = &oauthProvider{
			config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				RedirectURL:  h.appURL + "/api/auth/google/callback",
				Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
				Endpoint:     google.Endpoint,
			},
			fetchProfile: googleProfile("https://www.googleapis.com/oauth2/v2/userinfo"),
		}
	}
	if cfg.OAuthEnabled("github") {
		h.providers["github"] = &oauthProvider{
			config: &oauth2.Config{
				ClientID:     cfg.GitHubClientID,
				ClientSecret: cfg.GitHubClientSecret,
				RedirectURL:  h.appURL + "/api/auth/github/callback",
				Scopes:       []string{"user:email"},
				Endpoint:     github.Endpoint,
			},
			fetchProfile: githubProfile("https://api.github.com"),
		}
	}

	return h
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.issueToken(w, r, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("login failed", "error", err)
		handleServiceError(w, r, err)
		return
	}

	slog.Info("user logged in", "user_id", user.ID)
	h.issueToken(w, r, http.StatusOK, user)
}

// issueToken returns the JWT in the body for API clients and sets it as the
// session cookie for the browser.
func (h *AuthHandler) issueToken(w http.ResponseWriter, r *http.Request, status int, user *model.User) {
	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		handleServiceError(w, r, fmt.Errorf("failed to generate JWT: %w", err))
		return
	}

	h.authService.SetJWTCookie(w, token, h.authService.TokenExpiry())
	writeJSON(w, status, authResponse{Token: token, User: user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		User      *model.User `json:"user"`
		CSRFToken string      `json:"csrfToken"`
	}{
		User:      ctxkeys.User(r.Context()),
		CSRFToken: ctxkeys.CSRFToken(r.Context()),
	})
}

// OAuthRedirect sends the user to the provider's consent screen
func (h *AuthHandler) OAuthRedirect(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[r.PathValue("provider")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown login provider")
		return
	}

	// Generate secure state token for CSRF protection
	state := generateOAuthState()

	cfg := ctxkeys.Config(r.Context())
	isProduction := cfg != nil && cfg.IsProduction()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction, // Secure flag based on APP_ENV (safer than r.TLS behind load balancers)
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})

	url := provider.config.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// OAuthCallback finishes the login and redirects back to the app with the
// session cookie set
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("provider")
	provider, ok := h.providers[name]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown login provider")
		return
	}

	// Validate state parameter for CSRF protection
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value != state || state == "" {
		slog.Warn("oauth state validation failed", "provider", name, "error", err)
		h.oauthFailed(w, r)
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		slog.Warn("oauth callback missing code", "provider", name)
		h.oauthFailed(w, r)
		return
	}

	token, err := provider.config.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("oauth token exchange failed", "provider", name, "error", err)
		h.oauthFailed(w, r)
		return
	}

	email, displayName, err := provider.fetchProfile(r.Context(), provider.config.Client(r.Context(), token))
	if err != nil {
		slog.Error("failed to get oauth profile", "provider", name, "error", err)
		h.oauthFailed(w, r)
		return
	}

	user, err := h.authService.AuthenticateOAuth(r.Context(), email, displayName, name)
	if err != nil {
		slog.Error("oauth authentication failed", "provider", name, "error", err)
		h.oauthFailed(w, r)
		return
	}

	jwtToken, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		h.oauthFailed(w, r)
		return
	}

	h.authService.SetJWTCookie(w, jwtToken, h.authService.TokenExpiry())
	slog.Info("user logged in with oauth", "provider", name, "user_id", user.ID)

	http.Redirect(w, r, h.appURL+"/", http.StatusSeeOther)
}

func (h *AuthHandler) oauthFailed(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.appURL+"/?auth_error=oauth", http.StatusSeeOther)
}

func googleProfile(userInfoURL string) func(context.Context, *http.Client) (string, string, error) {
	return func(ctx context.Context, client *http.Client) (string, string, error) {
		var info struct {
			Email         string `json:"email"`
			Name          string `json:"name"`
			VerifiedEmail bool   `json:"verified_email"`
		}
		err := getJSON(ctx, client, userInfoURL, &info)
		if err != nil {
			return "", "", err
		}
		if !info.VerifiedEmail {
			return "", "", errors.New("google email is not verified")
		}
		return info.Email, info.Name, nil
	}
}

// githubProfile falls back to /user/emails because the main response omits
// private addresses
func githubProfile(apiURL string) func(context.Context, *http.Client) (string, string, error) {
	return func(ctx context.Context, client *http.Client) (string, string, error) {
		var info struct {
			Email string `json:"email"`
			Name  string `json:"name"`
			Login string `json:"login"`
		}
		err := getJSON(ctx, client, apiURL+"/user", &info)
		if err != nil {
			return "", "", err
		}

		name := info.Name
		if name == "" {
			name = info.Login
		}

		if info.Email != "" {
			return info.Email, name, nil
		}

		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		err = getJSON(ctx, client, apiURL+"/user/emails", &emails)
		if err != nil {
			return "", "", err
		}

		for _, e := range emails {
			if e.Primary && e.Verified {
				return e.Email, name, nil
			}
		}

		return "", "", errors.New("no verified primary email on github account")
	}
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// generateOAuthState creates cryptographically secure random state token for OAuth CSRF protection
func generateOAuthState() string {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		panic("failed to generate oauth state: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
