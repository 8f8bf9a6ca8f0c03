package model

import (
	"time"

	"cmsapi/internal/schema"
)

// File is an uploaded object. The bytes live in object storage under
// StoragePath; URL is filled on read and never persisted.
type File struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"size:255;not null" json:"name"`
	Hash        string      `gorm:"size:64;not null;uniqueIndex" json:"hash"`
	Ext         string      `gorm:"size:16" json:"ext"`
	Mime        string      `gorm:"size:127" json:"mime"`
	Size        int64       `json:"size"`
	Provider    string      `gorm:"size:32" json:"provider"`
	StoragePath string      `gorm:"size:512;not null" json:"storage_path"`
	URL         string      `gorm:"-" json:"url,omitempty"`
	Related     []FileMorph `gorm:"foreignKey:UploadFileID" json:"related,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (File) TableName() string { return schema.FileTable }

func (f File) Identifier() uint { return f.ID }

// FileMorph links a file to a field of any resource row.
type FileMorph struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UploadFileID uint   `gorm:"column:upload_file_id;index;not null" json:"upload_file_id"`
	RelatedID    uint   `gorm:"index:idx_upload_file_morph_related" json:"related_id"`
	RelatedType  string `gorm:"size:64;index:idx_upload_file_morph_related" json:"related_type"`
	Field        string `gorm:"size:64" json:"field"`
}

func (FileMorph) TableName() string { return schema.MorphTable }
