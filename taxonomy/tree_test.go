package taxonomy

import (
	"testing"

	"github.com/foldsnap/foldsnapbackend/models"
)

func folderIDs(folders []*models.Folder) []uint {
	ids := make([]uint, len(folders))
	for i, f := range folders {
		ids[i] = f.ID
	}
	return ids
}

func TestBuildTreeNesting(t *testing.T) {
	folders := []*models.Folder{
		{ID: 1, Name: "Trips", ParentID: models.RootFolderID},
		{ID: 2, Name: "2024", ParentID: 1},
		{ID: 3, Name: "2025", ParentID: 1},
		{ID: 4, Name: "Work", ParentID: models.RootFolderID},
		{ID: 5, Name: "Summer", ParentID: 2},
	}

	roots := BuildTree(folders)
	if len(roots) != 2 {
		t.Fatalf("got %d roots, want 2", len(roots))
	}
	trips := roots[0]
	if trips.ID != 1 {
		t.Fatalf("first root = %d, want 1", trips.ID)
	}
	if got := folderIDs(trips.Children); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("children of Trips = %v, want [2 3]", got)
	}
	if len(trips.Children[0].Children) != 1 || trips.Children[0].Children[0].ID != 5 {
		t.Errorf("children of 2024 = %v, want [5]", folderIDs(trips.Children[0].Children))
	}
}

func TestBuildTreePositionOrder(t *testing.T) {
	folders := []*models.Folder{
		{ID: 1, ParentID: models.RootFolderID, Position: 2},
		{ID: 2, ParentID: models.RootFolderID, Position: 0},
		{ID: 3, ParentID: models.RootFolderID, Position: 1},
		// same position as 2; stable sort keeps store order (id ascending)
		{ID: 4, ParentID: models.RootFolderID, Position: 0},
	}

	roots := BuildTree(folders)
	got := folderIDs(roots)
	want := []uint{2, 4, 3, 1}
	if len(got) != len(want) {
		t.Fatalf("got %d roots, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("roots = %v, want %v", got, want)
			break
		}
	}
}

func TestBuildTreeMissingParentPromoted(t *testing.T) {
	folders := []*models.Folder{
		{ID: 1, ParentID: models.RootFolderID},
		{ID: 2, ParentID: 99},
	}

	roots := BuildTree(folders)
	if len(roots) != 2 {
		t.Fatalf("got %d roots, want 2 (orphan promoted)", len(roots))
	}
}

func TestBuildTreeDoesNotMutateInput(t *testing.T) {
	folders := []*models.Folder{
		{ID: 1, ParentID: models.RootFolderID, Position: 1},
		{ID: 2, ParentID: models.RootFolderID, Position: 0},
	}
	BuildTree(folders)
	if folders[0].ID != 1 || folders[1].ID != 2 {
		t.Error("input slice order was mutated")
	}
}

func TestRecursiveTotals(t *testing.T) {
	folders := []*models.Folder{
		{ID: 1, ParentID: models.RootFolderID, MediaCount: 2, DirectSize: 100},
		{ID: 2, ParentID: 1, MediaCount: 2, DirectSize: 50},
		{ID: 3, ParentID: 2, MediaCount: 1, DirectSize: 25},
	}

	roots := BuildTree(folders)
	if len(roots) != 1 {
		t.Fatalf("got %d roots, want 1", len(roots))
	}
	root := roots[0]

	if got := root.TotalMediaCount(); got != 5 {
		t.Errorf("root TotalMediaCount = %d, want 5", got)
	}
	if got := root.TotalSize(); got != 175 {
		t.Errorf("root TotalSize = %d, want 175", got)
	}

	mid := root.Children[0]
	if got := mid.TotalMediaCount(); got != 3 {
		t.Errorf("mid TotalMediaCount = %d, want 3", got)
	}
	if got := mid.TotalSize(); got != 75 {
		t.Errorf("mid TotalSize = %d, want 75", got)
	}
}
