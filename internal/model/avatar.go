package model

// AvatarUsage counts how many times a pool avatar URL has been assigned.
// New users and guests receive the least-used avatar so the fixed pool is
// spread evenly.
type AvatarUsage struct {
    URL        string // avatar_usage.url
    UsageCount int    // avatar_usage.usage_count
}
