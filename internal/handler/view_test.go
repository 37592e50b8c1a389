package handler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/feedback-board/internal/model"
)

func TestFeedbackToViewGuestEntry(t *testing.T) {
	gid := "guest_1700000000000_abc123def"
	now := time.Now()
	f := model.Feedback{
		ID:          5,
		GuestID:     &gid,
		Name:        "Visitor",
		AvatarURL:   "https://cdn.example.com/g.png",
		Rating:      4,
		Body:        "Nice board",
		UpvoteCount: 2,
		CreatedAt:   now,
	}

	v := feedbackToView(f, nil, nil)
	assert.Nil(t, v.UserID)
	require.NotNil(t, v.GuestID)
	assert.Equal(t, gid, *v.GuestID)
	assert.Equal(t, "Nice board", v.Feedback)
	assert.Nil(t, v.OriginalContent)
	assert.Nil(t, v.Submitter)
	assert.NotNil(t, v.Replies) // always a JSON array, never null
	assert.Empty(t, v.Replies)
}

func TestFeedbackToViewEditedWithSnapshot(t *testing.T) {
	origName := "Old Name"
	origBody := "Old text"
	origRating := 2
	origAt := time.Now().Add(-time.Hour)
	uid := uint64(9)
	f := model.Feedback{
		ID:                7,
		UserID:            &uid,
		Name:              "New Name",
		Rating:            5,
		Body:              "New text",
		IsEdited:          true,
		OriginalName:      &origName,
		OriginalBody:      &origBody,
		OriginalRating:    &origRating,
		OriginalCreatedAt: &origAt,
	}
	sub := &model.SubmitterInfo{Email: "u@example.com", LoginMethod: "google", IsVerified: true}

	replies := []model.Reply{{ID: 1, FeedbackID: 7, AdminName: "Admin", Body: "thanks"}}
	v := feedbackToView(f, replies, sub)

	require.NotNil(t, v.OriginalContent)
	assert.Equal(t, "Old Name", v.OriginalContent.Name)
	assert.Equal(t, "Old text", v.OriginalContent.Feedback)
	assert.Equal(t, 2, v.OriginalContent.Rating)

	require.NotNil(t, v.Submitter)
	assert.Equal(t, "u@example.com", v.Submitter.Email)

	require.Len(t, v.Replies, 1)
	assert.Equal(t, "thanks", v.Replies[0].Text)
}

func TestFeedbackViewWireFormat(t *testing.T) {
	f := model.Feedback{ID: 1, Name: "A", Rating: 5, Body: "b"}
	raw, err := json.Marshal(feedbackToView(f, nil, nil))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, key := range []string{"id", "userId", "guestId", "name", "avatarUrl", "rating",
		"feedback", "isPinned", "isEdited", "aiProcessed", "readByAdmin",
		"upvoteCount", "timestamp", "replies"} {
		assert.Contains(t, m, key)
	}
	assert.NotContains(t, m, "originalContent")
	assert.NotContains(t, m, "submitterInfo")
}

func TestUserToView(t *testing.T) {
	hash := "$2a$10$hash"
	u := &model.User{
		ID: 3, Name: "Alice", Email: "a@example.com",
		PasswordHash: &hash, LoginMethod: "email", IsVerified: true,
	}
	v := userToView(u)
	assert.Equal(t, uint64(3), v.ID)
	assert.True(t, v.HasPassword)
	assert.False(t, v.HasCustomAvatar)
}

func TestSessionResponse(t *testing.T) {
	u := &model.User{ID: 3, Name: "Alice", Email: "a@example.com"}
	out, err := sessionResponse("secret", u, 7)
	require.NoError(t, err)
	assert.NotEmpty(t, out["token"])
	user, ok := out["user"].(userView)
	require.True(t, ok)
	assert.Equal(t, "Alice", user.Name)
}
