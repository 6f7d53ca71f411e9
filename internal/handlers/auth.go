package handlers

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"roadbook/internal/middleware"
	"roadbook/internal/render"
	"roadbook/internal/session"
	"roadbook/internal/store"
)

// totpIssuer is the issuer name shown in authenticator apps.
const totpIssuer = "Roadbook"

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	renderer  *render.Renderer
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		renderer:  renderer,
		sessions:  sessions,
		userStore: userStore,
	}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	// If already logged in with 2FA complete, redirect to the dashboard.
	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.TwoFADone {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "admin/login", &render.PageData{
		Title: "Log in",
		Data:  map[string]any{},
	})
}

// LoginSubmit processes the login form.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := a.userStore.FindByEmail(email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		a.renderer.Page(w, r, "admin/login", &render.PageData{
			Title: "Log in",
			Data:  map[string]any{"Error": "An unexpected error occurred."},
		})
		return
	}

	if user == nil || !a.userStore.CheckPassword(user, password) {
		a.renderer.Page(w, r, "admin/login", &render.PageData{
			Title: "Log in",
			Data:  map[string]any{"Error": "Invalid email or password."},
		})
		return
	}

	// Create a session. TwoFADone stays false until the code is verified.
	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   false,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user.Needs2FASetup() {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
	} else {
		http.Redirect(w, r, "/admin/2fa/verify", http.StatusSeeOther)
	}
}

// TwoFASetupPage generates a TOTP secret and displays the QR code.
func (a *Auth) TwoFASetupPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := a.userStore.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "admin/2fa_setup", &render.PageData{
		Title: "Set up 2FA",
		Data: map[string]any{
			"QRCode": base64.StdEncoding.EncodeToString(qrPNG),
			"Secret": key.Secret(),
		},
	})
}

// TwoFAVerifyPage renders the 2FA code entry form for users who already
// have 2FA set up.
func (a *Auth) TwoFAVerifyPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "admin/2fa_verify", &render.PageData{
		Title: "Two-factor authentication",
		Data:  map[string]any{},
	})
}

// TwoFAVerifySubmit validates the TOTP code and completes authentication.
// The same endpoint serves both first-time setup confirmation and the
// regular per-login verification.
func (a *Auth) TwoFAVerifySubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	code := r.FormValue("code")

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user.TOTPSecret == nil {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
		return
	}

	if !totp.Validate(code, *user.TOTPSecret) {
		if !user.TOTPEnabled {
			// Still in setup: re-render the setup page with the same secret.
			qrPNG, _ := qrcode.Encode(
				fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s",
					totpIssuer, user.Email, *user.TOTPSecret, totpIssuer),
				qrcode.Medium, 256,
			)
			a.renderer.Page(w, r, "admin/2fa_setup", &render.PageData{
				Title: "Set up 2FA",
				Data: map[string]any{
					"Error":  "Invalid code. Please try again.",
					"QRCode": base64.StdEncoding.EncodeToString(qrPNG),
					"Secret": *user.TOTPSecret,
				},
			})
			return
		}

		a.renderer.Page(w, r, "admin/2fa_verify", &render.PageData{
			Title: "Two-factor authentication",
			Data:  map[string]any{"Error": "Invalid code. Please try again."},
		})
		return
	}

	// First-time setup: persist the enrollment.
	if !user.TOTPEnabled {
		if err := a.userStore.EnableTOTP(user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// TwoFASetupSubmit is an alias for the shared verify endpoint so the setup
// form can post to its own URL.
func (a *Auth) TwoFASetupSubmit(w http.ResponseWriter, r *http.Request) {
	a.TwoFAVerifySubmit(w, r)
}

// Logout destroys the session and redirects to the login page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
