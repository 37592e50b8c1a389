package model

import "time"

// Feedback is a rating plus free-text comment submitted either by a
// registered user (UserID set) or by an anonymous guest (GuestID set).  The
// submitter's display name and avatar are denormalized onto the row so that
// listings do not need a join for guests.
//
// When the owner edits the entry for the first time, the Original* columns
// snapshot the pre-edit content and IsEdited is set; later edits keep the
// first snapshot.  UpvoteCount mirrors the number of rows in feedback_votes
// for this entry and is maintained alongside every vote mutation.
//
// Fields:
//  ID                – primary key identifier.
//  UserID            – owning user (nil for guest submissions).
//  GuestID           – client-persisted guest identifier (nil for users).
//  Name              – submitter display name at submission/edit time.
//  AvatarURL         – submitter avatar at submission/edit time.
//  Rating            – 1..5 star rating.
//  Body              – feedback text.
//  IsPinned          – admin pin flag; pinned entries sort first.
//  IsEdited          – set after the first owner edit.
//  OriginalName      – pre-edit name snapshot (nullable).
//  OriginalBody      – pre-edit body snapshot (nullable).
//  OriginalRating    – pre-edit rating snapshot (nullable).
//  OriginalCreatedAt – pre-edit timestamp snapshot (nullable).
//  AIProcessed       – auto-responder has replied to or skipped this entry.
//  ReadByAdmin       – admin marked the entry as read.
//  UpvoteCount       – denormalized vote count.
//  CreatedAt         – submission (or last edit) timestamp; listing order key.
type Feedback struct {
    ID                uint64     // feedback.id
    UserID            *uint64    // feedback.user_id (nullable)
    GuestID           *string    // feedback.guest_id (nullable)
    Name              string     // feedback.name
    AvatarURL         string     // feedback.avatar_url
    Rating            int        // feedback.rating
    Body              string     // feedback.body
    IsPinned          bool       // feedback.is_pinned
    IsEdited          bool       // feedback.is_edited
    OriginalName      *string    // feedback.original_name (nullable)
    OriginalBody      *string    // feedback.original_body (nullable)
    OriginalRating    *int       // feedback.original_rating (nullable)
    OriginalCreatedAt *time.Time // feedback.original_created_at (nullable)
    AIProcessed       bool       // feedback.ai_processed
    ReadByAdmin       bool       // feedback.read_by_admin
    UpvoteCount       int        // feedback.upvote_count
    CreatedAt         time.Time  // feedback.created_at
}

// Reply is one entry in a feedback's reply thread, authored either by the
// human admin or by the auto-responder (distinguished by AdminName).
type Reply struct {
    ID         uint64    // feedback_replies.id
    FeedbackID uint64    // feedback_replies.feedback_id
    AdminName  string    // feedback_replies.admin_name
    Body       string    // feedback_replies.body
    CreatedAt  time.Time // feedback_replies.created_at
}

// Vote records a single upvote on a feedback entry.  Exactly one of UserID
// and GuestID is set; unique indexes on (feedback_id, user_id) and
// (feedback_id, guest_id) make double-voting structurally impossible.
type Vote struct {
    ID         uint64    // feedback_votes.id
    FeedbackID uint64    // feedback_votes.feedback_id
    UserID     *uint64   // feedback_votes.user_id (nullable)
    GuestID    *string   // feedback_votes.guest_id (nullable)
    CreatedAt  time.Time // feedback_votes.created_at
}

// SubmitterInfo carries the verification details of a feedback's author,
// attached to listing rows so moderators can see who is behind an entry.
type SubmitterInfo struct {
    Email       string    // users.email
    LoginMethod string    // users.login_method
    IsVerified  bool      // users.is_verified
    CreatedAt   time.Time // users.created_at
}
