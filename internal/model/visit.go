package model

import "time"

// Visit is one recorded page hit, used by the admin analytics endpoint for
// total and unique-IP counts over a period.
type Visit struct {
    ID        uint64    // visits.id
    IP        string    // visits.ip
    Path      string    // visits.path
    CreatedAt time.Time // visits.created_at
}
