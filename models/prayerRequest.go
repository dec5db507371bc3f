package models

import (
	"errors"
	"strings"
	"time"
)

const AnonymousName = "Anonymous"

var ErrEmptyPrayerContent = errors.New("prayer request content is required")

type PrayerRequest struct {
	ID              string    `json:"id" goqu:"skipinsert"`
	User_ID         *string   `json:"userId"`
	Name            string    `json:"name"`
	Content         string    `json:"content"`
	Is_Anonymous    bool      `json:"isAnonymous"`
	Is_Confidential bool      `json:"isConfidential"`
	Prayer_Count    int       `json:"prayerCount" goqu:"skipinsert"`
	Created_At      time.Time `json:"createdAt" goqu:"skipinsert"`
	User_Timezone   *string   `json:"userTimezone"`
}

type PrayerRequestCreate struct {
	Name           string `json:"name"`
	Content        string `json:"content"`
	IsAnonymous    bool   `json:"isAnonymous"`
	IsConfidential bool   `json:"isConfidential"`
	UserTimezone   string `json:"userTimezone"`
}

// ToPrayerRequest validates the form and builds the row to insert. Anonymous
// requests never keep the typed name.
func (p PrayerRequestCreate) ToPrayerRequest(userID *string) (PrayerRequest, error) {
	content := strings.TrimSpace(p.Content)
	if content == "" {
		return PrayerRequest{}, ErrEmptyPrayerContent
	}

	name := strings.TrimSpace(p.Name)
	if p.IsAnonymous || name == "" {
		name = AnonymousName
	}

	var tz *string
	if p.UserTimezone != "" {
		tz = &p.UserTimezone
	}

	return PrayerRequest{
		User_ID:         userID,
		Name:            name,
		Content:         content,
		Is_Anonymous:    p.IsAnonymous,
		Is_Confidential: p.IsConfidential,
		User_Timezone:   tz,
	}, nil
}

type PrayerRequestUpdate struct {
	Content        *string `json:"content"`
	IsConfidential *bool   `json:"isConfidential"`
}

// PrayerWallEntry is a request as shown on the wall, with its timestamp
// rendered for the member reading it.
type PrayerWallEntry struct {
	PrayerRequest
	CreatedAgo       string `json:"createdAgo"`
	CreatedAtDisplay string `json:"createdAtDisplay"`
}
