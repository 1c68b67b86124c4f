package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/foldsnap/foldsnapbackend/database"
	"github.com/foldsnap/foldsnapbackend/models"
	"github.com/foldsnap/foldsnapbackend/taxonomy"
)

// FolderRepository orchestrates folder CRUD and media organization. It
// composes the naming policy, the size aggregator and the media relation
// store, and enforces the structural invariants before any write takes
// effect: a failed validation never leaves a partial mutation behind.
type FolderRepository struct {
	DB      *gorm.DB
	Queries *database.FolderQueries
	Naming  *taxonomy.NamingPolicy
	Agg     *taxonomy.Aggregator
	Media   MediaRelationStore
}

// NewFolderRepository creates a new instance of FolderRepository
func NewFolderRepository(db *gorm.DB, queries *database.FolderQueries, naming *taxonomy.NamingPolicy, agg *taxonomy.Aggregator, media MediaRelationStore) *FolderRepository {
	return &FolderRepository{DB: db, Queries: queries, Naming: naming, Agg: agg, Media: media}
}

// ListAll retrieves all folders as a flat list in identifier order, with the
// direct media count injected from a single GROUP BY scan.
func (r *FolderRepository) ListAll() ([]*models.Folder, error) {
	var folders []*models.Folder
	if err := r.DB.Order("id ASC").Find(&folders).Error; err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	counts, err := r.Queries.FolderMediaCounts()
	if err != nil {
		return nil, err
	}
	for _, folder := range folders {
		folder.MediaCount = counts[folder.ID]
	}

	return folders, nil
}

// GetTree retrieves all folders as a nested forest sorted by position, with
// direct sizes injected from the aggregator. Recursive totals are computed by
// the model's rollup accessors after assembly. Pure read.
func (r *FolderRepository) GetTree() ([]*models.Folder, error) {
	folders, err := r.ListAll()
	if err != nil {
		return nil, err
	}

	sizes, err := r.Agg.FolderSizes()
	if err != nil {
		return nil, err
	}
	for _, folder := range folders {
		folder.DirectSize = sizes[folder.ID]
	}

	return taxonomy.BuildTree(folders), nil
}

// GetByID retrieves a folder by its ID, including its direct media count.
// Returns taxonomy.ErrFolderNotFound if no such folder exists.
func (r *FolderRepository) GetByID(id uint) (*models.Folder, error) {
	var folder models.Folder
	if err := r.DB.First(&folder, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, taxonomy.ErrFolderNotFound
		}
		return nil, fmt.Errorf("failed to get folder by ID %d: %w", id, err)
	}

	if err := r.DB.Model(&models.Media{}).Where("folder_id = ?", id).Count(&folder.MediaCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count media for folder ID %d: %w", id, err)
	}

	return &folder, nil
}

// Create creates a new folder under parentID (models.RootFolderID for top
// level). The name is sanitized and uniquified among its siblings; color is
// validated when non-empty. Returns the freshly-read folder.
func (r *FolderRepository) Create(name string, parentID uint, color string, position int) (*models.Folder, error) {
	name, err := r.Naming.SanitizeName(name)
	if err != nil {
		return nil, err
	}

	if parentID != models.RootFolderID {
		if _, err := r.getParentOrFail(parentID); err != nil {
			return nil, err
		}
	}

	name, err = r.Naming.EnsureUnique(name, parentID, 0)
	if err != nil {
		return nil, err
	}

	if color != "" {
		if color, err = taxonomy.SanitizeHexColor(color); err != nil {
			return nil, err
		}
	}

	slug, err := r.Naming.EnsureUniqueSlug(taxonomy.Slugify(name), 0)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	folder := models.Folder{
		Name:      name,
		Slug:      slug,
		ParentID:  parentID,
		Color:     color,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.DB.Create(&folder).Error; err != nil {
		return nil, fmt.Errorf("failed to create folder %s: %w", name, err)
	}

	r.Agg.Invalidate()
	return r.GetByID(folder.ID)
}

// Update updates an existing folder. Nil parentID/position and empty
// name/color mean "leave unchanged" — there is no way to clear a name or
// color, only replace it. When renaming, uniqueness is resolved against the
// effective parent (the new parent if one is given) and excludes the folder's
// own id.
func (r *FolderRepository) Update(id uint, name string, parentID *uint, color string, position *int) (*models.Folder, error) {
	folder, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"updated_at": time.Now().Unix(),
	}

	if name != "" {
		name, err = r.Naming.SanitizeName(name)
		if err != nil {
			return nil, err
		}
		effectiveParentID := folder.ParentID
		if parentID != nil {
			effectiveParentID = *parentID
		}
		name, err = r.Naming.EnsureUnique(name, effectiveParentID, id)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}

	if parentID != nil {
		if *parentID != models.RootFolderID {
			if err := r.checkReparent(id, *parentID); err != nil {
				return nil, err
			}
		}
		updates["parent_id"] = *parentID
	}

	if color != "" {
		if color, err = taxonomy.SanitizeHexColor(color); err != nil {
			return nil, err
		}
		updates["color"] = color
	}

	if position != nil {
		updates["position"] = *position
	}

	// if only updated_at is present, no actual fields were changed
	if len(updates) > 1 {
		result := r.DB.Model(&models.Folder{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update folder ID %d: %w", id, result.Error)
		}
		r.Agg.Invalidate()
	}

	return r.GetByID(id)
}

// Delete removes a folder. Its media relations are released, so previously
// assigned items return to the root bucket, and its children are reparented
// to the root level. All three writes happen in one transaction.
func (r *FolderRepository) Delete(id uint) error {
	if _, err := r.GetByID(id); err != nil {
		return err
	}

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Media{}).Where("folder_id = ?", id).Update("folder_id", nil).Error; err != nil {
			return fmt.Errorf("failed to release media for folder ID %d: %w", id, err)
		}
		if err := tx.Model(&models.Folder{}).Where("parent_id = ?", id).
			Update("parent_id", models.RootFolderID).Error; err != nil {
			return fmt.Errorf("failed to reparent children of folder ID %d: %w", id, err)
		}
		result := tx.Delete(&models.Folder{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete folder ID %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return taxonomy.ErrFolderNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.Agg.Invalidate()
	return nil
}

// AssignMedia assigns media items to a folder, replacing any previous folder
// relation each item had. Validation is all-or-nothing: every id is checked
// in one bulk query before any relation is written.
func (r *FolderRepository) AssignMedia(folderID uint, mediaIDs []uint) error {
	if _, err := r.GetByID(folderID); err != nil {
		return err
	}

	ids := filterIDs(mediaIDs)
	if len(ids) == 0 {
		return taxonomy.ErrMediaIDsRequired
	}

	existing, err := r.Media.ExistingIDs(ids)
	if err != nil {
		return err
	}
	if len(existing) != len(ids) {
		known := make(map[uint]bool, len(existing))
		for _, id := range existing {
			known[id] = true
		}
		var invalid []uint
		for _, id := range ids {
			if !known[id] {
				invalid = append(invalid, id)
			}
		}
		return fmt.Errorf("%w: %v", taxonomy.ErrInvalidMediaID, invalid)
	}

	if err := r.Media.AssignToFolder(folderID, ids); err != nil {
		return err
	}

	r.Agg.Invalidate()
	return nil
}

// RemoveMedia clears the folder relation for the given media ids. Removal is
// idempotent per id: ids that are not assigned to the folder are ignored.
func (r *FolderRepository) RemoveMedia(folderID uint, mediaIDs []uint) error {
	if _, err := r.GetByID(folderID); err != nil {
		return err
	}

	ids := filterIDs(mediaIDs)
	if len(ids) == 0 {
		return taxonomy.ErrMediaIDsRequired
	}

	if err := r.Media.RemoveFromFolder(folderID, ids); err != nil {
		return err
	}

	r.Agg.Invalidate()
	return nil
}

// GetRootMediaCount counts media items not assigned to any folder.
func (r *FolderRepository) GetRootMediaCount() (int64, error) {
	return r.Agg.RootMediaCount()
}

// GetRootTotalSize returns the byte total of media not assigned to any folder.
func (r *FolderRepository) GetRootTotalSize() (int64, error) {
	return r.Agg.RootTotalSize()
}

// getParentOrFail verifies a parent folder exists, mapping the not-found case
// to ErrParentNotFound.
func (r *FolderRepository) getParentOrFail(parentID uint) (*models.Folder, error) {
	parent, err := r.GetByID(parentID)
	if err != nil {
		if errors.Is(err, taxonomy.ErrFolderNotFound) {
			return nil, taxonomy.ErrParentNotFound
		}
		return nil, err
	}
	return parent, nil
}

// checkReparent verifies newParentID exists and that attaching id under it
// would not create a cycle: a folder may not become a child of itself or of
// one of its own descendants. Walks the ancestor chain of the new parent.
func (r *FolderRepository) checkReparent(id, newParentID uint) error {
	if newParentID == id {
		return taxonomy.ErrInvalidParent
	}
	parent, err := r.getParentOrFail(newParentID)
	if err != nil {
		return err
	}

	for cursor := parent; cursor.ParentID != models.RootFolderID; {
		if cursor.ParentID == id {
			return taxonomy.ErrInvalidParent
		}
		cursor, err = r.GetByID(cursor.ParentID)
		if err != nil {
			if errors.Is(err, taxonomy.ErrFolderNotFound) {
				// dangling ancestor, chain ends here
				return nil
			}
			return err
		}
	}
	return nil
}

// filterIDs drops zero values and duplicates while preserving order.
func filterIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	filtered := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		filtered = append(filtered, id)
	}
	return filtered
}
