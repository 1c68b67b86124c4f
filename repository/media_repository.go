package repository

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/facette/natsort"
	"gorm.io/gorm"

	"github.com/foldsnap/foldsnapbackend/models"
)

// media listing orders
const (
	MediaOrderDate = "date" // newest first, the default
	MediaOrderName = "name" // natural filename order
)

// MediaRepository handles database operations for Media entities. It backs
// the existence checker, relation store and metadata reader the folder core
// depends on.
type MediaRepository struct {
	DB *gorm.DB
}

// NewMediaRepository creates a new instance of MediaRepository
func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{DB: db}
}

// Create creates a new media record in the database
func (r *MediaRepository) Create(media *models.Media) error {
	now := time.Now().Unix()
	if media.CreatedAt == 0 {
		media.CreatedAt = now
	}
	if media.UpdatedAt == 0 {
		media.UpdatedAt = now
	}

	if err := r.DB.Create(media).Error; err != nil {
		return fmt.Errorf("failed to create media %s: %w", media.Filename, err)
	}
	return nil
}

// GetByID retrieves a media item by its ID
func (r *MediaRepository) GetByID(id uint) (*models.Media, error) {
	var media models.Media
	if err := r.DB.First(&media, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get media by ID %d: %w", id, err)
	}
	return &media, nil
}

// ExistingIDs returns the subset of ids that refer to stored media items,
// resolved in a single bulk query.
func (r *MediaRepository) ExistingIDs(ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var existing []uint
	if err := r.DB.Model(&models.Media{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return nil, fmt.Errorf("failed to validate media ids: %w", err)
	}
	return existing, nil
}

// AssignToFolder points every given media item at folderID in one UPDATE,
// replacing whatever folder relation each item had before.
func (r *MediaRepository) AssignToFolder(folderID uint, ids []uint) error {
	result := r.DB.Model(&models.Media{}).Where("id IN ?", ids).Updates(map[string]interface{}{
		"folder_id":  folderID,
		"updated_at": time.Now().Unix(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to assign media to folder ID %d: %w", folderID, result.Error)
	}
	return nil
}

// RemoveFromFolder clears the relation for ids currently assigned to
// folderID. Ids assigned elsewhere or unassigned are left untouched, which
// makes removal idempotent per id.
func (r *MediaRepository) RemoveFromFolder(folderID uint, ids []uint) error {
	result := r.DB.Model(&models.Media{}).
		Where("id IN ? AND folder_id = ?", ids, folderID).
		Updates(map[string]interface{}{
			"folder_id":  nil,
			"updated_at": time.Now().Unix(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to remove media from folder ID %d: %w", folderID, result.Error)
	}
	return nil
}

// ListByFolder returns one page of media for a folder, with the total count
// for the scope. folderID 0 selects the unassigned bucket. Date order is
// resolved in SQL; natural name order sorts the scope's filenames in memory
// before paging, since collation can't express it.
func (r *MediaRepository) ListByFolder(folderID uint, page, perPage int, orderBy string) ([]models.Media, int64, error) {
	scope := r.DB.Model(&models.Media{})
	if folderID == models.RootFolderID {
		scope = scope.Where("folder_id IS NULL")
	} else {
		scope = scope.Where("folder_id = ?", folderID)
	}

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count media for folder ID %d: %w", folderID, err)
	}

	if page < 1 {
		page = 1
	}
	offset := (page - 1) * perPage

	if orderBy == MediaOrderName {
		return r.listPageByName(scope, offset, perPage, total)
	}

	var items []models.Media
	err := scope.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(perPage).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list media for folder ID %d: %w", folderID, err)
	}
	return items, total, nil
}

type mediaNameRow struct {
	ID       uint
	Filename string
}

func (r *MediaRepository) listPageByName(scope *gorm.DB, offset, perPage int, total int64) ([]models.Media, int64, error) {
	var rows []mediaNameRow
	if err := scope.Session(&gorm.Session{}).Select("id", "filename").Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list media filenames: %w", err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return natsort.Compare(rows[i].Filename, rows[j].Filename)
	})

	if offset >= len(rows) {
		return []models.Media{}, total, nil
	}
	end := offset + perPage
	if end > len(rows) {
		end = len(rows)
	}
	pageRows := rows[offset:end]

	pageIDs := make([]uint, len(pageRows))
	for i, row := range pageRows {
		pageIDs[i] = row.ID
	}

	var items []models.Media
	if err := r.DB.Where("id IN ?", pageIDs).Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch media page: %w", err)
	}

	// restore natural order; IN() gives no ordering guarantee
	byID := make(map[uint]models.Media, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	ordered := make([]models.Media, 0, len(pageIDs))
	for _, id := range pageIDs {
		if item, ok := byID[id]; ok {
			ordered = append(ordered, item)
		}
	}
	return ordered, total, nil
}

// UpdateMetadata replaces the opaque metadata blob for a media item
func (r *MediaRepository) UpdateMetadata(id uint, metadata string) error {
	result := r.DB.Model(&models.Media{}).Where("id = ?", id).Updates(map[string]interface{}{
		"metadata":   metadata,
		"updated_at": time.Now().Unix(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update metadata for media ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetThumbnailPath records the generated thumbnail location for a media item
func (r *MediaRepository) SetThumbnailPath(id uint, thumbnailPath string) error {
	result := r.DB.Model(&models.Media{}).Where("id = ?", id).Updates(map[string]interface{}{
		"thumbnail_path": thumbnailPath,
		"updated_at":     time.Now().Unix(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to set thumbnail path for media ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
