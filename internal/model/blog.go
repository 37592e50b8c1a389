package model

import "time"

// Blog is an admin-authored CMS entry shown on the public site.
type Blog struct {
    ID        uint64    // blogs.id
    Link      string    // blogs.link
    Title     string    // blogs.title
    Summary   string    // blogs.summary
    Badge     string    // blogs.badge
    Author    string    // blogs.author
    CreatedAt time.Time // blogs.created_at
}
