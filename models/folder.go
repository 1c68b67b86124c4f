package models

// RootFolderID is the parent sentinel for top-level folders. Media with no
// folder relation belongs to the virtual root bucket, which is not a
// persisted Folder row.
const RootFolderID uint = 0

// Folder represents a node in the media folder hierarchy.
// It corresponds to the 'folders' table.
type Folder struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"not null;index:idx_folders_parent_name" json:"name"`
	Slug     string `gorm:"not null;uniqueIndex" json:"slug"`
	ParentID uint   `gorm:"not null;default:0;index:idx_folders_parent_name" json:"parent_id"`
	Color    string `gorm:"not null;default:''" json:"color"`
	Position int    `gorm:"not null;default:0" json:"position"`

	CreatedAt int64 `gorm:"not null" json:"created_at"` // Unix timestamp
	UpdatedAt int64 `gorm:"not null" json:"updated_at"` // Unix timestamp

	// derived per read, never persisted
	MediaCount int64     `gorm:"-" json:"media_count"`
	DirectSize int64     `gorm:"-" json:"direct_size"`
	Children   []*Folder `gorm:"-" json:"children,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Folder) TableName() string {
	return "folders"
}

// TotalMediaCount returns the folder's direct media count plus the recursive
// total of all its children. Computed on demand; the tree is rebuilt per
// request so there is no staleness to manage.
func (f *Folder) TotalMediaCount() int64 {
	total := f.MediaCount
	for _, child := range f.Children {
		total += child.TotalMediaCount()
	}
	return total
}

// TotalSize returns the folder's direct byte size plus the recursive total of
// all its children.
func (f *Folder) TotalSize() int64 {
	total := f.DirectSize
	for _, child := range f.Children {
		total += child.TotalSize()
	}
	return total
}

// FolderPayload is the nested wire representation of a folder, carrying both
// direct and recursive stats.
type FolderPayload struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	ParentID        uint            `json:"parent_id"`
	Color           string          `json:"color"`
	Position        int             `json:"position"`
	MediaCount      int64           `json:"media_count"`
	DirectSize      int64           `json:"direct_size"`
	TotalMediaCount int64           `json:"total_media_count"`
	TotalSize       int64           `json:"total_size"`
	Children        []FolderPayload `json:"children"`
}

// ToPayload serializes the folder and its children recursively.
func (f *Folder) ToPayload() FolderPayload {
	children := make([]FolderPayload, 0, len(f.Children))
	for _, child := range f.Children {
		children = append(children, child.ToPayload())
	}

	return FolderPayload{
		ID:              f.ID,
		Name:            f.Name,
		Slug:            f.Slug,
		ParentID:        f.ParentID,
		Color:           f.Color,
		Position:        f.Position,
		MediaCount:      f.MediaCount,
		DirectSize:      f.DirectSize,
		TotalMediaCount: f.TotalMediaCount(),
		TotalSize:       f.TotalSize(),
		Children:        children,
	}
}
