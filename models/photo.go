package models

import "time"

type PhotoFolder struct {
	ID         string    `json:"id" goqu:"skipinsert"`
	Name       string    `json:"name"`
	Created_At time.Time `json:"createdAt" goqu:"skipinsert"`
}

type Photo struct {
	ID          string    `json:"id" goqu:"skipinsert"`
	Folder_ID   *string   `json:"folderId"`
	Url         string    `json:"url"`
	Description *string   `json:"description"`
	Created_At  time.Time `json:"createdAt" goqu:"skipinsert"`
}

type PhotoFolderForm struct {
	Name string `json:"name" binding:"required"`
}
