package models

import "time"

type RosterImage struct {
	ID         string    `json:"id" goqu:"skipinsert"`
	Date       time.Time `json:"date"`
	Pdf_Url    string    `json:"pdfUrl"`
	Created_At time.Time `json:"createdAt" goqu:"skipinsert"`
	Updated_At time.Time `json:"updatedAt" goqu:"skipinsert"`
}

type RosterImageForm struct {
	Date   string `form:"date" json:"date" binding:"required"`
	PdfUrl string `form:"pdfUrl" json:"pdfUrl"`
}

// RosterPage is one roster with enough context to page through the rest.
type RosterPage struct {
	Roster *RosterImage `json:"roster"`
	Index  int          `json:"index"`
	Total  int          `json:"total"`
}
