package models

import "time"

// Drawing is a technical drawing file attached to a position. Paths are
// relative to the media root.
type Drawing struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	PositionID  int64     `gorm:"column:position_id;not null;index"`
	Title       string    `gorm:"column:title;size:255;not null;default:''"`
	FilePath    string    `gorm:"column:file_path;size:512;not null"`
	PreviewPath string    `gorm:"column:preview_path;size:512;not null;default:''"`
	UploadedAt  time.Time `gorm:"column:uploaded_at;autoCreateTime"`
}

func (Drawing) TableName() string { return "drawings" }
