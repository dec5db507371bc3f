package models

import "time"

type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"publishedAt"`
	Thumbnail   string    `json:"thumbnail"`
	Description string    `json:"description"`
	Duration    string    `json:"duration"`
	ViewCount   uint64    `json:"viewCount"`
}
