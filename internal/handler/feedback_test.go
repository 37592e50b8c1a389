package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/feedback-board/internal/model"
	"github.com/iliyamo/feedback-board/internal/repository"
)

// bindValidator mirrors the server's Echo validator hook so handlers can
// call c.Validate inside tests.
type bindValidator struct{ v *validator.Validate }

func (b *bindValidator) Validate(i interface{}) error {
	if err := b.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func fbContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = &bindValidator{v: validator.New()}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSubmitRejectsInvalidRating(t *testing.T) {
	h := &FeedbackHandler{}

	for _, body := range []string{
		`{"name":"Dana","feedback":"Nice board","rating":0}`,
		`{"name":"Dana","feedback":"Nice board","rating":6}`,
		`{"name":"Dana","feedback":"Nice board","rating":-3}`,
		`{"name":"Dana","rating":4}`,
	} {
		c, rec := fbContext(http.MethodPost, "/api/feedback", body)
		require.NoError(t, h.Submit(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
		assert.Contains(t, rec.Body.String(), "Feedback and rating are required.")
	}
}

func TestSubmitRequiresGuestName(t *testing.T) {
	h := &FeedbackHandler{}
	c, rec := fbContext(http.MethodPost, "/api/feedback",
		`{"feedback":"Anonymous praise","rating":5}`)

	require.NoError(t, h.Submit(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Name is required for guest feedback.")
}

func TestEditRejectsBadInput(t *testing.T) {
	h := &FeedbackHandler{}

	c, rec := fbContext(http.MethodPut, "/api/feedback/abc",
		`{"feedback":"Updated","rating":3}`)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	require.NoError(t, h.Edit(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid feedback id.")

	c, rec = fbContext(http.MethodPut, "/api/feedback/1",
		`{"feedback":"","rating":3}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Edit(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Feedback and rating are required for update!")
}

func TestEditOwnership(t *testing.T) {
	owner := uint64(7)
	guest := "guest-abc123"
	now := time.Now().UTC()

	userEntry := model.Feedback{ID: 1, UserID: &owner, CreatedAt: now.Add(-time.Hour)}
	guestEntry := model.Feedback{ID: 2, GuestID: &guest, CreatedAt: now.Add(-2 * time.Minute)}
	staleGuestEntry := model.Feedback{ID: 3, GuestID: &guest, CreatedAt: now.Add(-10 * time.Minute)}

	cases := []struct {
		name     string
		entry    model.Feedback
		userID   uint64
		isUser   bool
		verified bool
		guestID  string
		denied   string
	}{
		{"verified owner may edit", userEntry, owner, true, true, "", ""},
		{"other user denied", userEntry, owner + 1, true, true, "", "You can only edit your own feedbacks."},
		{"unverified owner denied", userEntry, owner, true, false, "", "Email not verified. Please verify your email to perform this action."},
		{"user cannot claim guest entry", guestEntry, owner, true, true, "", "You can only edit your own feedbacks."},
		{"guest in window may edit", guestEntry, 0, false, false, guest, ""},
		{"wrong guest id denied", guestEntry, 0, false, false, "guest-other", "You can only edit your own feedbacks."},
		{"missing guest id denied", guestEntry, 0, false, false, "", "You can only edit your own feedbacks."},
		{"guest window closed", staleGuestEntry, 0, false, false, guest, "The edit window for guest feedback has closed."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := editForbidden(tc.entry, tc.userID, tc.isUser, tc.verified, tc.guestID, now)
			if tc.denied == "" {
				assert.NoError(t, err)
				assert.Empty(t, msg)
				return
			}
			assert.ErrorIs(t, err, repository.ErrForbidden)
			assert.Equal(t, tc.denied, msg)
		})
	}
}

func TestVoteRejectsBadInput(t *testing.T) {
	h := &FeedbackHandler{}

	c, rec := fbContext(http.MethodPost, "/api/feedback/abc/vote",
		`{"voteType":"upvote","guestId":"guest-abc123"}`)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	require.NoError(t, h.Vote(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid feedback id.")

	c, rec = fbContext(http.MethodPost, "/api/feedback/1/vote",
		`{"voteType":"downvote","guestId":"guest-abc123"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Vote(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid vote type.")

	c, rec = fbContext(http.MethodPost, "/api/feedback/1/vote",
		`{"voteType":"upvote"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Vote(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authentication required or provide a unique guest identifier.")
}
