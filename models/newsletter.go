package models

import "time"

type Newsletter struct {
	ID         string    `json:"id" goqu:"skipinsert"`
	Title      string    `json:"title"`
	Month      string    `json:"month"`
	Year       int       `json:"year"`
	Pdf_Url    string    `json:"pdfUrl"`
	Created_At time.Time `json:"createdAt" goqu:"skipinsert"`
	Updated_At time.Time `json:"updatedAt" goqu:"skipinsert"`
}

type NewsletterForm struct {
	Title  string `form:"title" json:"title" binding:"required"`
	Month  string `form:"month" json:"month" binding:"required"`
	Year   int    `form:"year" json:"year" binding:"required,min=1900"`
	PdfUrl string `form:"pdfUrl" json:"pdfUrl"`
}

type NewsletterList struct {
	Latest  *Newsletter  `json:"latest"`
	Archive []Newsletter `json:"archive"`
}
