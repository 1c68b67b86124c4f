package taxonomy

import (
	"sort"

	"github.com/foldsnap/foldsnapbackend/models"
)

// BuildTree assembles a flat folder list into a parent-linked forest sorted
// by position. The sort is stable, so folders sharing a position keep the
// order the store returned them in (identifier order). A folder whose parent
// is missing from the set is promoted to a root rather than dropped; dangling
// parents are expected transiently after deletes.
func BuildTree(folders []*models.Folder) []*models.Folder {
	sorted := make([]*models.Folder, len(folders))
	copy(sorted, folders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	byID := make(map[uint]*models.Folder, len(sorted))
	for _, folder := range sorted {
		byID[folder.ID] = folder
	}

	roots := make([]*models.Folder, 0)
	for _, folder := range sorted {
		if folder.ParentID == models.RootFolderID {
			roots = append(roots, folder)
			continue
		}
		parent, ok := byID[folder.ParentID]
		if !ok {
			roots = append(roots, folder)
			continue
		}
		parent.Children = append(parent.Children, folder)
	}

	return roots
}
