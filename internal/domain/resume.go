package domain

import "time"

const (
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

type Resume struct {
	ID               int64     `json:"id"`
	FileName         string    `json:"fileName"`
	FileType         string    `json:"fileType"`
	FileSize         int64     `json:"fileSize"`
	FilePath         string    `json:"-"`
	OriginalFileName string    `json:"originalFileName"`
	IsPrimary        bool      `json:"isPrimary"`
	Description      *string   `json:"description"`
	UserID           int64     `json:"userId"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
