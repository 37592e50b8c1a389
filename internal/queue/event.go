// Package queue defines message payloads exchanged over the message broker.
package queue

// Event kinds published on the feedback.events queue.
const (
	KindFeedbackCreated = "feedback.created"
	KindVoteUpdated     = "feedback.voted"
	KindReplyCreated    = "reply.created"
)

// FeedbackEvent is the envelope broadcast whenever the board changes.
// Connected frontends (and any other consumer) receive enough to update a
// listing without querying the primary database.  Delivery is best-effort:
// there is no acknowledgment back to the client and no replay.
type FeedbackEvent struct {
	Kind        string `json:"kind"`
	FeedbackID  uint64 `json:"feedback_id"`
	Name        string `json:"name,omitempty"`
	Body        string `json:"body,omitempty"`
	Rating      int    `json:"rating,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	UpvoteCount int    `json:"upvote_count,omitempty"`
	ReplyBody   string `json:"reply_body,omitempty"`
	AdminName   string `json:"admin_name,omitempty"`
	CreatedAt   string `json:"created_at"`
}
