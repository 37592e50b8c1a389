package handler

import (
	"fmt"
	"time"

	"github.com/iliyamo/feedback-board/internal/model"
	"github.com/iliyamo/feedback-board/internal/utils"
)

// view.go holds the JSON shapes shared by the public and admin endpoints.
// The wire format keeps the camelCase field names the frontend already
// consumes.

type replyView struct {
	ID        uint64    `json:"id"`
	AdminName string    `json:"adminName"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type originalContentView struct {
	Name      string    `json:"name"`
	Feedback  string    `json:"feedback"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

type submitterView struct {
	Email       string    `json:"email"`
	LoginMethod string    `json:"loginMethod"`
	IsVerified  bool      `json:"isVerified"`
	CreatedAt   time.Time `json:"createdAt"`
}

type feedbackView struct {
	ID              uint64               `json:"id"`
	UserID          *uint64              `json:"userId"`
	GuestID         *string              `json:"guestId"`
	Name            string               `json:"name"`
	AvatarURL       string               `json:"avatarUrl"`
	Rating          int                  `json:"rating"`
	Feedback        string               `json:"feedback"`
	IsPinned        bool                 `json:"isPinned"`
	IsEdited        bool                 `json:"isEdited"`
	OriginalContent *originalContentView `json:"originalContent,omitempty"`
	AIProcessed     bool                 `json:"aiProcessed"`
	ReadByAdmin     bool                 `json:"readByAdmin"`
	UpvoteCount     int                  `json:"upvoteCount"`
	Timestamp       time.Time            `json:"timestamp"`
	Replies         []replyView          `json:"replies"`
	Submitter       *submitterView       `json:"submitterInfo,omitempty"`
}

func replyViews(replies []model.Reply) []replyView {
	out := make([]replyView, 0, len(replies))
	for _, r := range replies {
		out = append(out, replyView{ID: r.ID, AdminName: r.AdminName, Text: r.Body, Timestamp: r.CreatedAt})
	}
	return out
}

func feedbackToView(f model.Feedback, replies []model.Reply, sub *model.SubmitterInfo) feedbackView {
	v := feedbackView{
		ID:          f.ID,
		UserID:      f.UserID,
		GuestID:     f.GuestID,
		Name:        f.Name,
		AvatarURL:   f.AvatarURL,
		Rating:      f.Rating,
		Feedback:    f.Body,
		IsPinned:    f.IsPinned,
		IsEdited:    f.IsEdited,
		AIProcessed: f.AIProcessed,
		ReadByAdmin: f.ReadByAdmin,
		UpvoteCount: f.UpvoteCount,
		Timestamp:   f.CreatedAt,
		Replies:     replyViews(replies),
	}
	if f.OriginalBody != nil {
		oc := originalContentView{Feedback: *f.OriginalBody}
		if f.OriginalName != nil {
			oc.Name = *f.OriginalName
		}
		if f.OriginalRating != nil {
			oc.Rating = *f.OriginalRating
		}
		if f.OriginalCreatedAt != nil {
			oc.Timestamp = *f.OriginalCreatedAt
		}
		v.OriginalContent = &oc
	}
	if sub != nil {
		v.Submitter = &submitterView{
			Email:       sub.Email,
			LoginMethod: sub.LoginMethod,
			IsVerified:  sub.IsVerified,
			CreatedAt:   sub.CreatedAt,
		}
	}
	return v
}

// userView is the public user payload embedded in auth responses; it mirrors
// the claims carried by the user JWT.
type userView struct {
	ID              uint64    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	AvatarURL       string    `json:"avatarUrl"`
	LoginMethod     string    `json:"loginMethod"`
	IsVerified      bool      `json:"isVerified"`
	HasCustomAvatar bool      `json:"hasCustomAvatar"`
	HasPassword     bool      `json:"hasPassword"`
	CreatedAt       time.Time `json:"createdAt"`
}

func userToView(u *model.User) userView {
	return userView{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		AvatarURL:       u.AvatarURL,
		LoginMethod:     u.LoginMethod,
		IsVerified:      u.IsVerified,
		HasCustomAvatar: u.HasCustomAvatar,
		HasPassword:     u.HasPassword(),
		CreatedAt:       u.CreatedAt,
	}
}

// sessionResponse bundles a fresh token with its user payload.
func sessionResponse(secret string, u *model.User, ttlDays int) (map[string]any, error) {
	tok, err := utils.NewUserToken(secret, u, ttlDays)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return map[string]any{"token": tok.Token, "user": userToView(u)}, nil
}
