package config

import (
    "os"
    "strings"
)

// defaultAvatarPool is the built-in set of default avatar images assigned to
// new users and guests.  The pool can be replaced via the AVATAR_POOL env
// var (comma-separated URLs), e.g. to point at a different Cloudinary folder.
var defaultAvatarPool = []string{
    "https://res.cloudinary.com/feedback-board/image/upload/avatars/a01.png",
    "https://res.cloudinary.com/feedback-board/image/upload/avatars/a02.png",
    "https://res.cloudinary.com/feedback-board/image/upload/avatars/a03.png",
    "https://res.cloudinary.com/feedback-board/image/upload/avatars/a04.png",
    "https://res.cloudinary.com/feedback-board/image/upload/avatars/a05.png",
    "https://res.cloudinary.com/feedback-board/image/upload/avatars/a06.png",
    "https://res.cloudinary.com/feedback-board/image/upload/avatars/a07.png",
    "https://res.cloudinary.com/feedback-board/image/upload/avatars/a08.png",
    "https://res.cloudinary.com/feedback-board/image/upload/avatars/a09.png",
    "https://res.cloudinary.com/feedback-board/image/upload/avatars/a10.png",
    "https://res.cloudinary.com/feedback-board/image/upload/avatars/a11.png",
    "https://res.cloudinary.com/feedback-board/image/upload/avatars/a12.png",
}

// AvatarPool returns the avatar URL pool in use.  Entries are trimmed and
// empty values dropped; an empty env var keeps the built-in pool.
func AvatarPool() []string {
    raw := os.Getenv("AVATAR_POOL")
    if raw == "" {
        return defaultAvatarPool
    }
    var pool []string
    for _, u := range strings.Split(raw, ",") {
        if u = strings.TrimSpace(u); u != "" {
            pool = append(pool, u)
        }
    }
    if len(pool) == 0 {
        return defaultAvatarPool
    }
    return pool
}
