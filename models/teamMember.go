package models

import "time"

type TeamMember struct {
	ID          string    `json:"id" goqu:"skipinsert"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Img         string    `json:"img"`
	Description string    `json:"description"`
	Created_At  time.Time `json:"createdAt" goqu:"skipinsert"`
	Updated_At  time.Time `json:"updatedAt" goqu:"skipinsert"`
}

type TeamMemberForm struct {
	Name        string `form:"name" json:"name" binding:"required"`
	Role        string `form:"role" json:"role" binding:"required"`
	Email       string `form:"email" json:"email"`
	Phone       string `form:"phone" json:"phone"`
	Img         string `form:"img" json:"img"`
	Description string `form:"description" json:"description"`
}
