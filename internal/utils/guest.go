package utils

import (
    "fmt"
    "strings"
    "time"

    "github.com/google/uuid"
)

// NewGuestID generates an identifier for an anonymous submitter when the
// client did not send one.  The client persists it locally so later edits
// and votes by the same guest can be attributed.
func NewGuestID() string {
    suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
    return fmt.Sprintf("guest_%d_%s", time.Now().UnixMilli(), suffix)
}
