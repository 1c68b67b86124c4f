package repository

import (
	"github.com/foldsnap/foldsnapbackend/models"
)

// FolderRepositoryInterface defines the methods for folder data operations
type FolderRepositoryInterface interface {
	GetTree() ([]*models.Folder, error)
	GetByID(id uint) (*models.Folder, error)
	Create(name string, parentID uint, color string, position int) (*models.Folder, error)
	Update(id uint, name string, parentID *uint, color string, position *int) (*models.Folder, error)
	Delete(id uint) error
	AssignMedia(folderID uint, mediaIDs []uint) error
	RemoveMedia(folderID uint, mediaIDs []uint) error
	GetRootMediaCount() (int64, error)
	GetRootTotalSize() (int64, error)
}

// MediaRelationStore is the narrow contract the folder repository needs from
// the media side: bulk existence validation and relation writes.
type MediaRelationStore interface {
	ExistingIDs(ids []uint) ([]uint, error)
	AssignToFolder(folderID uint, ids []uint) error
	RemoveFromFolder(folderID uint, ids []uint) error
}

// MediaRepositoryInterface defines the methods for media data operations
type MediaRepositoryInterface interface {
	MediaRelationStore
	Create(media *models.Media) error
	GetByID(id uint) (*models.Media, error)
	ListByFolder(folderID uint, page, perPage int, orderBy string) ([]models.Media, int64, error)
	UpdateMetadata(id uint, metadata string) error
	SetThumbnailPath(id uint, thumbnailPath string) error
}

// UserRepositoryInterface defines the methods for user data operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	EnsureAdmin(username, password string) error
}
