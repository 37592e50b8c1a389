package handler

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/feedback-board/internal/config"
	"github.com/iliyamo/feedback-board/internal/repository"
	"github.com/iliyamo/feedback-board/internal/service"
)

// maxAvatarUpload caps avatar file size at 5 MB.
const maxAvatarUpload = 5 << 20

// UserHandler bundles dependencies for the profile endpoints.
type UserHandler struct {
	Cfg        config.Config
	Users      *repository.UserRepo
	Feedback   *repository.FeedbackRepo
	Avatars    *repository.AvatarRepo
	Subs       *repository.SubscriptionRepo
	Cloudinary *service.CloudinaryUploader // nil when not configured
}

// ----- DTOs -----

type updateProfileReq struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type subscribeReq struct {
	Subscription struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256DH string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	} `json:"subscription"`
}

// UpdateProfile changes the display name and/or avatar, cascades the new
// identity onto the user's feedback rows and returns a fresh session token.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	uid, _ := c.Get("user_id").(uint64)
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update profile."})
	}

	name := ""
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Name cannot be empty."})
		}
	}
	avatar := ""
	customAvatar := u.HasCustomAvatar
	if req.AvatarURL != nil && *req.AvatarURL != "" && *req.AvatarURL != u.AvatarURL {
		avatar = *req.AvatarURL
		customAvatar = true
		if err := h.Avatars.IncrementUsage(ctx, avatar); err != nil {
			logrus.WithError(err).Warn("avatar usage bump failed")
		}
	}

	if err := h.Users.UpdateProfile(ctx, uid, name, avatar, customAvatar); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update profile."})
	}
	u, err = h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update profile."})
	}

	if err := h.Feedback.CascadeIdentity(ctx, uid, u.Name, u.AvatarURL); err != nil {
		logrus.WithError(err).Warn("profile cascade onto feedback failed")
	}

	resp, err := sessionResponse(h.Cfg.JWTSecret, &u, h.Cfg.UserTokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update profile."})
	}
	resp["message"] = "Profile updated successfully!"
	return c.JSON(http.StatusOK, resp)
}

// ChangePassword sets a new password.  Accounts that already hold one must
// present it; a Google account may set its first password, which flips the
// login method to email.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	uid, _ := c.Get("user_id").(uint64)
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if len(req.NewPassword) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid password details. New password must be at least 6 characters."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not change password."})
	}

	if u.HasPassword() {
		if req.CurrentPassword == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Current password is required to change password."})
		}
		if !verifyUserPassword(&u, req.CurrentPassword) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Incorrect current password."})
		}
	}

	if err := h.Users.SetPassword(ctx, uid, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not change password."})
	}
	u, err = h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not change password."})
	}

	resp, err := sessionResponse(h.Cfg.JWTSecret, &u, h.Cfg.UserTokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not change password."})
	}
	resp["message"] = "Password has been successfully set/changed!"
	return c.JSON(http.StatusOK, resp)
}

// UploadAvatar stores a custom avatar image on Cloudinary and cascades the
// hosted URL onto the user's feedback.
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	uid, _ := c.Get("user_id").(uint64)
	if h.Cloudinary == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "Avatar uploads are not configured."})
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "No file uploaded."})
	}
	if file.Size > maxAvatarUpload {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Avatar file is too large."})
	}
	if ct := file.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Only image files are allowed."})
	}
	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not upload avatar."})
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxAvatarUpload))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not upload avatar."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not upload avatar."})
	}

	url, err := h.Cloudinary.UploadAvatar(ctx, file.Filename, data)
	if err != nil {
		logrus.WithError(err).Warn("cloudinary upload failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not upload avatar."})
	}

	if err := h.Users.UpdateProfile(ctx, uid, "", url, true); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not upload avatar."})
	}
	if err := h.Feedback.CascadeAvatarByUser(ctx, uid, url); err != nil {
		logrus.WithError(err).Warn("avatar cascade onto feedback failed")
	}

	u.AvatarURL = url
	u.HasCustomAvatar = true
	resp, err := sessionResponse(h.Cfg.JWTSecret, &u, h.Cfg.UserTokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not upload avatar."})
	}
	resp["message"] = "Avatar uploaded successfully!"
	return c.JSON(http.StatusOK, resp)
}

// SubscribeNotifications stores the browser's push subscription.
func (h *UserHandler) SubscribeNotifications(c echo.Context) error {
	uid, _ := c.Get("user_id").(uint64)
	var req subscribeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if req.Subscription.Endpoint == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "No push subscription data provided."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Subs.Upsert(ctx, uid, req.Subscription.Endpoint, req.Subscription.Keys.P256DH, req.Subscription.Keys.Auth)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not save subscription."})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "User push subscription saved successfully!"})
}

// VAPIDPublicKey hands the configured public key to the browser.
func (h *UserHandler) VAPIDPublicKey(c echo.Context) error {
	if h.Cfg.VAPIDPublicKey == "" {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "VAPID public key not configured on server."})
	}
	return c.String(http.StatusOK, h.Cfg.VAPIDPublicKey)
}
