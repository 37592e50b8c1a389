package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/feedback-board/internal/config"
	"github.com/iliyamo/feedback-board/internal/model"
	"github.com/iliyamo/feedback-board/internal/repository"
	"github.com/iliyamo/feedback-board/internal/service"
	"github.com/iliyamo/feedback-board/internal/utils"
)

// Token lifetimes for the email action links.
const (
	verifyTokenTTL = 10 * time.Minute
	resetTokenTTL  = time.Hour
	// A reset link younger than this blocks a new request.
	resetResendWait = 5 * time.Minute
)

// AuthHandler bundles dependencies for the account endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Feedback *repository.FeedbackRepo
	Avatars  *repository.AvatarRepo
	Email    *service.EmailClient   // nil when the relay is not configured
	Google   *service.GoogleVerifier // nil when sign-in is not configured
}

// ----- DTOs -----

type signupReq struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	LinkGuestID string `json:"linkGuestId"`
}

type loginReq struct {
	Email       string `json:"email" validate:"required"`
	Password    string `json:"password" validate:"required"`
	LinkGuestID string `json:"linkGuestId"`
}

type googleSigninReq struct {
	Token       string `json:"token" validate:"required"`
	LinkGuestID string `json:"linkGuestId"`
}

type tokenReq struct {
	Token string `json:"token" validate:"required"`
}

type resetRequestReq struct {
	Email string `json:"email" validate:"required"`
}

type resetPasswordReq struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

func verifyUserPassword(u *model.User, plain string) bool {
	return u.PasswordHash != nil && utils.VerifyPassword(*u.PasswordHash, plain)
}

// migrateGuest re-attributes a guest's votes and feedback to the account
// they just signed in to.  Best-effort: a failed migration never blocks the
// login itself.
func (h *AuthHandler) migrateGuest(ctx context.Context, guestID string, u *model.User) {
	if guestID == "" {
		return
	}
	if err := h.Feedback.MigrateGuestIdentity(ctx, guestID, u); err != nil {
		logrus.WithError(err).WithField("guest_id", guestID).Warn("guest identity migration failed")
	}
}

// sendActionMail delivers an account email if the relay is configured.
func (h *AuthHandler) sendActionMail(ctx context.Context, u *model.User, kind service.ActionMailKind, subject, heading, button, link string) {
	if h.Email == nil {
		logrus.Warn("email relay not configured; skipping " + string(kind) + " mail")
		return
	}
	msg := service.EmailMessage{
		To:      u.Email,
		Subject: subject,
		HTML:    service.ActionMailHTML(kind, heading, u.Name, button, link),
	}
	if err := h.Email.Send(ctx, msg); err != nil {
		logrus.WithError(err).Warn("sending " + string(kind) + " mail failed")
	}
}

// Signup creates an email/password account and returns a session token.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Name, email, and password are required."})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Password must be at least 6 characters long."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if existing, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
		if existing.LoginMethod == model.LoginMethodGoogle && !existing.HasPassword() {
			return c.JSON(http.StatusConflict, echo.Map{
				"message":        "An account exists for this email via Google. Please log in with Google, or use Forgot Password to set one for email login.",
				"actionRequired": "SET_PASSWORD_FOR_GOOGLE_EMAIL",
			})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "This email is already registered."})
	} else if err != repository.ErrNotFound {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create account."})
	}

	avatar, err := h.Avatars.PickLeastUsed(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create account."})
	}
	uid, verifyToken, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, avatar, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "This email is already registered."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create account."})
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create account."})
	}

	h.migrateGuest(ctx, req.LinkGuestID, &u)

	verifyURL := h.Cfg.FrontendURL + "/verify-email.html?token=" + verifyToken
	h.sendActionMail(ctx, &u, service.MailVerifyRequest,
		"Feedback Board: Email Verification", "Email Verification", "Verify Your Email", verifyURL)

	resp, err := sessionResponse(h.Cfg.JWTSecret, &u, h.Cfg.UserTokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create account."})
	}
	resp["message"] = "Account created successfully. Please verify your email."
	return c.JSON(http.StatusCreated, resp)
}

// Login authenticates an email/password account.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email and password are required."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid email or password."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not log in."})
	}
	if u.LoginMethod == model.LoginMethodGoogle && !u.HasPassword() {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "You signed up with Google. Please log in with Google, or use the 'Forgot Password' link to set a new password."})
	}
	if !u.HasPassword() || !verifyUserPassword(&u, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid email or password."})
	}

	h.migrateGuest(ctx, req.LinkGuestID, &u)

	resp, err := sessionResponse(h.Cfg.JWTSecret, &u, h.Cfg.UserTokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not log in."})
	}
	return c.JSON(http.StatusOK, resp)
}

// GoogleSignIn verifies a Google ID token, then finds, links or creates the
// matching account.
func (h *AuthHandler) GoogleSignIn(c echo.Context) error {
	var req googleSigninReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Google ID token not found."})
	}
	if h.Google == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "Google sign-in is not configured."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	profile, err := h.Google.Verify(ctx, req.Token)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Google token verification failed."})
	}

	u, err := h.Users.GetByGoogleID(ctx, profile.GoogleID)
	switch {
	case err == nil:
		// Known Google account: refresh the Google avatar unless the user
		// picked their own, and make sure it is marked verified.
		if profile.AvatarURL != "" && !u.HasCustomAvatar {
			if aerr := h.Users.AdoptGoogleAvatar(ctx, u.ID, profile.AvatarURL); aerr == nil {
				u.AvatarURL = profile.AvatarURL
			}
		}
		if !u.IsVerified {
			if verr := h.Users.MarkVerified(ctx, u.ID); verr == nil {
				u.IsVerified = true
			}
		}
	case err == repository.ErrNotFound:
		// Look for an email/password account to link to.
		existing, gerr := h.Users.GetByEmail(ctx, profile.Email)
		if gerr == nil {
			if lerr := h.Users.LinkGoogle(ctx, existing.ID, profile.GoogleID, profile.AvatarURL); lerr != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not sign in with Google."})
			}
			u, err = h.Users.GetByID(ctx, existing.ID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not sign in with Google."})
			}
		} else if gerr == repository.ErrNotFound {
			avatar := profile.AvatarURL
			if avatar == "" {
				if avatar, err = h.Avatars.PickLeastUsed(ctx); err != nil {
					return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not sign in with Google."})
				}
			}
			uid, cerr := h.Users.CreateGoogle(ctx, profile.Name, profile.Email, profile.GoogleID, avatar)
			if cerr != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not sign in with Google."})
			}
			if u, err = h.Users.GetByID(ctx, uid); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not sign in with Google."})
			}
		} else {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not sign in with Google."})
		}
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not sign in with Google."})
	}

	h.migrateGuest(ctx, req.LinkGuestID, &u)

	resp, err := sessionResponse(h.Cfg.JWTSecret, &u, h.Cfg.UserTokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not sign in with Google."})
	}
	return c.JSON(http.StatusOK, resp)
}

// Me returns the current user's payload.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized. Please log in."})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load account."})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": userToView(&u)})
}

// RequestEmailVerification regenerates the verification token and emails the
// link.
func (h *AuthHandler) RequestEmailVerification(c echo.Context) error {
	uid, _ := c.Get("user_id").(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not send verification email."})
	}
	if u.LoginMethod == model.LoginMethodGoogle || u.IsVerified {
		return c.JSON(http.StatusOK, echo.Map{"message": "Email already verified or not applicable."})
	}

	token, err := h.Users.SetVerifyToken(ctx, u.ID, verifyTokenTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not send verification email."})
	}
	verifyURL := h.Cfg.FrontendURL + "/verify-email.html?token=" + token
	h.sendActionMail(ctx, &u, service.MailVerifyRequest,
		"Feedback Board: Email Verification", "Email Verification", "Verify Your Email", verifyURL)
	return c.JSON(http.StatusOK, echo.Map{"message": "Verification link has been sent to your email."})
}

// VerifyEmail consumes a verification token and returns a fresh session.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req tokenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email verification token not found."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.VerifyByToken(ctx, req.Token)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email verification token is invalid or has expired."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not verify email."})
	}

	h.sendActionMail(ctx, &u, service.MailVerifyConfirm,
		"Your Email Has Been Verified", "Email Verified Successfully", "Go To Dashboard", h.Cfg.FrontendURL+"/")

	resp, err := sessionResponse(h.Cfg.JWTSecret, &u, h.Cfg.UserTokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not verify email."})
	}
	resp["message"] = "Your email has been successfully verified."
	return c.JSON(http.StatusOK, resp)
}

// RequestPasswordReset issues a reset link.  The response is identical for
// unknown and unverified emails so the endpoint cannot be used to probe
// which addresses exist.
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req resetRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email address is required."})
	}

	generic := "If your email is in our system and linked to an email/password account, you will receive a password reset link."

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil || (u.LoginMethod == model.LoginMethodEmail && !u.IsVerified) {
		return c.JSON(http.StatusOK, echo.Map{"message": generic})
	}

	// A link sent moments ago is still good; only the newest link ever
	// works, so replacing it too eagerly would just spam the inbox.  The
	// repository refuses the rewrite while the previous link is fresh.
	token, err := h.Users.SetResetToken(ctx, u.ID, resetTokenTTL, resetResendWait)
	if err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusTooManyRequests, echo.Map{"message": "A password reset link was recently sent to this email. Please check your inbox or wait a few minutes before requesting a new one."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not send reset email."})
	}
	resetURL := h.Cfg.FrontendURL + "/reset-password.html?token=" + token
	h.sendActionMail(ctx, &u, service.MailResetRequest,
		"Your Password Reset Link", "Password Reset", "Reset Your Password", resetURL)
	return c.JSON(http.StatusOK, echo.Map{"message": "A password reset link has been sent to your email (if valid and linked)."})
}

// ResetPassword consumes a reset token and sets the new password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Password reset token not found."})
	}
	if req.Password == "" || req.Password != req.ConfirmPassword || len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid password details."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.ResetPasswordByToken(ctx, req.Token, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Password reset token is invalid or has expired."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not reset password."})
	}

	h.sendActionMail(ctx, &u, service.MailResetConfirm,
		"Your Password Has Been Successfully Reset", "Password Reset Successful", "Login Now", h.Cfg.FrontendURL)

	resp, err := sessionResponse(h.Cfg.JWTSecret, &u, h.Cfg.UserTokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not reset password."})
	}
	resp["message"] = "Your password has been successfully reset."
	return c.JSON(http.StatusOK, resp)
}
