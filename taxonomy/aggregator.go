package taxonomy

import (
	"encoding/json"
	"strconv"

	"github.com/foldsnap/foldsnapbackend/cache"
)

// cache keys for the expensive bulk scans; invalidated on every folder or
// assignment mutation
const (
	cacheKeyFolderSizes   = "foldsnap:folder_sizes"
	cacheKeyRootTotalSize = "foldsnap:root_total_size"
)

// MetaRow pairs a folder id with the raw metadata blob of one media item
// assigned to it.
type MetaRow struct {
	FolderID uint
	Metadata string
}

// SizeStore provides the bulk scans the aggregator sums over. Implemented by
// database.FolderQueries.
type SizeStore interface {
	FolderAttachmentMeta() ([]MetaRow, error)
	UnassignedAttachmentMeta() ([]string, error)
	CountUnassignedMedia() (int64, error)
}

// Aggregator computes per-folder byte totals and the unassigned-bucket stats
// in single bulk scans, serving repeated reads from cache until a mutation
// invalidates it. Naive per-folder queries would cost O(folders) round trips;
// this costs one scan plus in-memory summation.
type Aggregator struct {
	store SizeStore
	cache cache.Cache
}

func NewAggregator(store SizeStore, c cache.Cache) *Aggregator {
	return &Aggregator{store: store, cache: c}
}

// FolderSizes returns the direct byte total for every folder that has media
// assigned. Folders with no assigned media have no entry.
func (a *Aggregator) FolderSizes() (map[uint]int64, error) {
	if raw, ok := a.cache.Get(cacheKeyFolderSizes); ok {
		var sizes map[uint]int64
		if err := json.Unmarshal(raw, &sizes); err == nil {
			return sizes, nil
		}
	}

	rows, err := a.store.FolderAttachmentMeta()
	if err != nil {
		return nil, err
	}

	sizes := make(map[uint]int64)
	for _, row := range rows {
		sizes[row.FolderID] += ExtractFileSize(row.Metadata)
	}

	if raw, err := json.Marshal(sizes); err == nil {
		a.cache.Set(cacheKeyFolderSizes, raw)
	}
	return sizes, nil
}

// RootTotalSize returns the byte total of media with no folder relation.
func (a *Aggregator) RootTotalSize() (int64, error) {
	if raw, ok := a.cache.Get(cacheKeyRootTotalSize); ok {
		var total int64
		if err := json.Unmarshal(raw, &total); err == nil {
			return total, nil
		}
	}

	blobs, err := a.store.UnassignedAttachmentMeta()
	if err != nil {
		return 0, err
	}

	var total int64
	for _, blob := range blobs {
		total += ExtractFileSize(blob)
	}

	if raw, err := json.Marshal(total); err == nil {
		a.cache.Set(cacheKeyRootTotalSize, raw)
	}
	return total, nil
}

// RootMediaCount counts media with no folder relation. A single COUNT query;
// not cached, matching the store's per-folder relation counts which are read
// fresh as well.
func (a *Aggregator) RootMediaCount() (int64, error) {
	return a.store.CountUnassignedMedia()
}

// Invalidate drops the cached aggregates. Called after every folder
// create/update/delete and media assign/remove.
func (a *Aggregator) Invalidate() {
	a.cache.Delete(cacheKeyFolderSizes, cacheKeyRootTotalSize)
}

// ExtractFileSize pulls a numeric 'filesize' out of an opaque JSON metadata
// blob. Absent, malformed or non-numeric values contribute 0.
func ExtractFileSize(raw string) int64 {
	if raw == "" {
		return 0
	}

	var meta map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return 0
	}

	switch v := meta["filesize"].(type) {
	case float64:
		if v < 0 {
			return 0
		}
		return int64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return int64(f)
		}
	}
	return 0
}
