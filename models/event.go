package models

import "time"

const DateLayout = "2006-01-02"

type Event struct {
	ID          string    `json:"id" goqu:"skipinsert"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	Description *string   `json:"description"`
	Is_Public   bool      `json:"isPublic"`
	Created_At  time.Time `json:"createdAt" goqu:"skipinsert"`
	Updated_At  time.Time `json:"updatedAt" goqu:"skipinsert"`
}

// EventForm is shared by create and update; Date is a calendar day.
type EventForm struct {
	Title       string  `json:"title" binding:"required"`
	Date        string  `json:"date" binding:"required"`
	Time        string  `json:"time"`
	Location    string  `json:"location"`
	Category    string  `json:"category"`
	Description *string `json:"description"`
	IsPublic    bool    `json:"isPublic"`
}

func (f EventForm) ParseDate() (time.Time, error) {
	return time.Parse(DateLayout, f.Date)
}
