package models

import "time"

type PrayerCount struct {
	ID                string    `json:"id" goqu:"skipinsert"`
	Prayer_Request_ID string    `json:"prayerRequestId"`
	User_ID           string    `json:"userId"`
	Created_At        time.Time `json:"createdAt" goqu:"skipinsert"`
}

type PrayerToggleResult struct {
	Praying     bool `json:"praying"`
	PrayerCount int  `json:"prayerCount"`
}
