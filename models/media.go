package models

// Media represents a stored media attachment.
// It corresponds to the 'media' table.
type Media struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	Filename string `gorm:"not null" json:"filename"`
	Path     string `gorm:"not null;unique" json:"-"` // stored object key relative to the uploads dir
	MimeType string `gorm:"not null" json:"mime_type"`

	// FolderID is the folder relation; NULL means the item sits in the
	// virtual root bucket. A media item belongs to at most one folder.
	FolderID *uint `gorm:"index" json:"folder_id,omitempty"`

	// Metadata is an opaque JSON blob. The aggregator extracts a numeric
	// 'filesize' key from it and treats anything else as 0.
	Metadata string `gorm:"not null;default:''" json:"-"`

	ThumbnailPath *string `gorm:"" json:"thumbnail_path,omitempty"` // Nullable

	CreatedAt int64 `gorm:"not null;index" json:"created_at"` // Unix timestamp
	UpdatedAt int64 `gorm:"not null" json:"updated_at"`       // Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (Media) TableName() string {
	return "media"
}
