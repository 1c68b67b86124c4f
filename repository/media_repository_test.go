package repository

import (
	"testing"

	"github.com/foldsnap/foldsnapbackend/models"
)

func listFilenames(items []models.Media) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Filename
	}
	return names
}

func TestListByFolderDateOrder(t *testing.T) {
	folderRepo, mediaRepo := newTestRepos(t)

	folder, err := folderRepo.Create("A", models.RootFolderID, "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	older := createTestMedia(t, mediaRepo, "older.jpg", 1)
	newer := createTestMedia(t, mediaRepo, "newer.jpg", 1)
	if err := mediaRepo.DB.Model(older).Update("created_at", 1000).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mediaRepo.DB.Model(newer).Update("created_at", 2000).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := folderRepo.AssignMedia(folder.ID, []uint{older.ID, newer.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, total, err := mediaRepo.ListByFolder(folder.ID, 1, 10, MediaOrderDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	got := listFilenames(items)
	if len(got) != 2 || got[0] != "newer.jpg" || got[1] != "older.jpg" {
		t.Errorf("date order = %v, want [newer.jpg older.jpg]", got)
	}
}

func TestListByFolderNaturalNameOrder(t *testing.T) {
	folderRepo, mediaRepo := newTestRepos(t)

	folder, err := folderRepo.Create("A", models.RootFolderID, "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var ids []uint
	for _, name := range []string{"img10.jpg", "img2.jpg", "img1.jpg"} {
		ids = append(ids, createTestMedia(t, mediaRepo, name, 1).ID)
	}
	if err := folderRepo.AssignMedia(folder.ID, ids); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, _, err := mediaRepo.ListByFolder(folder.ID, 1, 10, MediaOrderName)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := listFilenames(items)
	want := []string{"img1.jpg", "img2.jpg", "img10.jpg"}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("natural order = %v, want %v", got, want)
		}
	}
}

func TestListByFolderPagination(t *testing.T) {
	folderRepo, mediaRepo := newTestRepos(t)

	folder, err := folderRepo.Create("A", models.RootFolderID, "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var ids []uint
	for i := 0; i < 5; i++ {
		ids = append(ids, createTestMedia(t, mediaRepo, listNames[i], 1).ID)
	}
	if err := folderRepo.AssignMedia(folder.ID, ids); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	page1, total, err := mediaRepo.ListByFolder(folder.ID, 1, 2, MediaOrderName)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 || len(page1) != 2 {
		t.Errorf("page 1: total %d len %d, want 5/2", total, len(page1))
	}

	page3, _, err := mediaRepo.ListByFolder(folder.ID, 3, 2, MediaOrderName)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page3) != 1 {
		t.Errorf("page 3 len = %d, want 1", len(page3))
	}

	// past the end is an empty page, not an error
	page4, _, err := mediaRepo.ListByFolder(folder.ID, 4, 2, MediaOrderName)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page4) != 0 {
		t.Errorf("page 4 len = %d, want 0", len(page4))
	}
}

var listNames = []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg"}

func TestListByFolderRootBucket(t *testing.T) {
	folderRepo, mediaRepo := newTestRepos(t)

	folder, err := folderRepo.Create("A", models.RootFolderID, "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assigned := createTestMedia(t, mediaRepo, "in-folder.jpg", 1)
	createTestMedia(t, mediaRepo, "loose.jpg", 1)
	if err := folderRepo.AssignMedia(folder.ID, []uint{assigned.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, total, err := mediaRepo.ListByFolder(models.RootFolderID, 1, 10, MediaOrderDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Filename != "loose.jpg" {
		t.Errorf("root bucket = %v (total %d), want [loose.jpg]", listFilenames(items), total)
	}
}
