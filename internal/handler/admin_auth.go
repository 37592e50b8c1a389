package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/feedback-board/internal/config"
	"github.com/iliyamo/feedback-board/internal/repository"
	"github.com/iliyamo/feedback-board/internal/service"
	"github.com/iliyamo/feedback-board/internal/utils"
)

// otpTTL is how long an admin login code stays valid.
const otpTTL = 5 * time.Minute

// AdminAuthHandler implements the two-step moderator login: password check
// mails a one-time code, then the code exchange issues the admin token.
type AdminAuthHandler struct {
	Cfg    config.Config
	Admins *repository.AdminRepo
	Email  *service.EmailClient // nil when the relay is not configured
}

type adminLoginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type verifyOTPReq struct {
	Username string `json:"username" validate:"required"`
	OTP      string `json:"otp" validate:"required"`
}

// Login checks the password, creates the admin row from env on first use,
// then mails a short-lived OTP.
func (h *AdminAuthHandler) Login(c echo.Context) error {
	var req adminLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if req.Username != h.Cfg.AdminUsername {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid username or password."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	admin, err := h.Admins.GetByUsername(ctx, req.Username)
	if err == repository.ErrNotFound {
		if h.Cfg.AdminInitialPassword == "" {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server setup incomplete: Initial admin password not set."})
		}
		admin, err = h.Admins.Seed(ctx, req.Username, h.Cfg.AdminInitialPassword, h.Cfg.BcryptCost)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Login failed."})
	}

	if !utils.VerifyPassword(admin.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid username or password."})
	}

	otp, err := utils.NewOTP()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Login failed."})
	}
	if err := h.Admins.SetOTP(ctx, admin.ID, otp, otpTTL); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Login failed."})
	}

	if h.Email == nil || h.Cfg.AdminEmail == "" {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Login failed. Could not send OTP email."})
	}
	msg := service.EmailMessage{
		To:      h.Cfg.AdminEmail,
		Subject: "Your Admin Login Code",
		HTML:    "<p>Your admin panel login code is <strong>" + otp + "</strong>. It expires in 5 minutes.</p>",
		Text:    "Your admin panel login code is " + otp + ". It expires in 5 minutes.",
	}
	if err := h.Email.Send(ctx, msg); err != nil {
		logrus.WithError(err).Error("sending admin OTP mail failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Login failed. Could not send OTP email."})
	}

	return c.JSON(http.StatusAccepted, echo.Map{
		"message":  "OTP sent to admin email. Please verify.",
		"step":     "OTP_REQUIRED",
		"username": admin.Username,
	})
}

// VerifyOTP exchanges a valid code for the admin session token.
func (h *AdminAuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if req.Username == "" || req.OTP == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Username and OTP are required."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	admin, err := h.Admins.GetByUsername(ctx, req.Username)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Admin user not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not verify OTP."})
	}

	if admin.OTPCode == nil || *admin.OTPCode != strings.ToUpper(req.OTP) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid OTP."})
	}
	if admin.OTPExpires == nil || admin.OTPExpires.Before(time.Now().UTC()) {
		// Wipe the stale code so it cannot be retried.
		_ = h.Admins.ClearOTP(ctx, admin.ID)
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "OTP expired. Please log in again."})
	}

	if err := h.Admins.ClearOTP(ctx, admin.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not verify OTP."})
	}

	tok, err := utils.NewAdminToken(h.Cfg.AdminJWTSecret, admin.Username, admin.ID, h.Cfg.AdminTokenTTLHrs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not verify OTP."})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "OTP verified. Login successful!",
		"token":   tok.Token,
		"admin": echo.Map{
			"username":   admin.Username,
			"adminId":    admin.ID,
			"loggedInAt": time.Now().UTC().Format(time.RFC3339),
		},
	})
}
