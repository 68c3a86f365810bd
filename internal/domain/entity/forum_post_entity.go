package entity

import "time"

// ForumPost is only listed here; authoring lives elsewhere.
type ForumPost struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	CreatedAt time.Time
}
