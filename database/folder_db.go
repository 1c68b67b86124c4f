package database

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"github.com/foldsnap/foldsnapbackend/taxonomy"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

type folderCountRow struct {
	FolderID uint  `gorm:"column:folder_id"`
	Total    int64 `gorm:"column:total"`
}

// FolderQueries bundles the bulk queries the taxonomy core needs but that
// don't fit GORM's model-centric API. Statements are built with squirrel and
// executed through the GORM connection.
type FolderQueries struct {
	DB *gorm.DB
}

func NewFolderQueries(db *gorm.DB) *FolderQueries {
	return &FolderQueries{DB: db}
}

// escapeLike escapes LIKE wildcards so user-supplied names can be embedded in
// a pattern. The queries using it declare ESCAPE '\'.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// SiblingNameMatches returns sibling names under parentID that equal name
// (case-insensitive) or look like a numbered variant "name (N)". Bounding the
// query to these candidates keeps uniqueness resolution at one round trip no
// matter how many siblings exist.
func (q *FolderQueries) SiblingNameMatches(name string, parentID, excludeID uint) ([]string, error) {
	pattern := escapeLike(name) + " (%)"

	queryBuilder := psql.Select("name").
		From("folders").
		Where(sq.Eq{"parent_id": parentID}).
		Where(sq.NotEq{"id": excludeID}).
		Where(sq.Or{
			sq.Expr("LOWER(name) = LOWER(?)", name),
			sq.Expr(`name LIKE ? ESCAPE '\'`, pattern),
		})

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for SiblingNameMatches: %w", err)
	}

	var names []string
	if err := q.DB.Raw(sqlStr, args...).Scan(&names).Error; err != nil {
		return nil, fmt.Errorf("failed to query sibling names for %q: %w", name, err)
	}
	return names, nil
}

// SlugMatches returns existing slugs equal to slug or matching "slug-N",
// excluding excludeID. Used to uniquify slugs globally.
func (q *FolderQueries) SlugMatches(slug string, excludeID uint) ([]string, error) {
	pattern := escapeLike(slug) + "-%"

	queryBuilder := psql.Select("slug").
		From("folders").
		Where(sq.NotEq{"id": excludeID}).
		Where(sq.Or{
			sq.Eq{"slug": slug},
			sq.Expr(`slug LIKE ? ESCAPE '\'`, pattern),
		})

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for SlugMatches: %w", err)
	}

	var slugs []string
	if err := q.DB.Raw(sqlStr, args...).Scan(&slugs).Error; err != nil {
		return nil, fmt.Errorf("failed to query slug matches for %q: %w", slug, err)
	}
	return slugs, nil
}

// FolderMediaCounts returns the number of media items directly assigned to
// each folder, in a single GROUP BY scan.
func (q *FolderQueries) FolderMediaCounts() (map[uint]int64, error) {
	queryBuilder := psql.Select("folder_id", "COUNT(*) AS total").
		From("media").
		Where("folder_id IS NOT NULL").
		GroupBy("folder_id")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for FolderMediaCounts: %w", err)
	}

	var rows []folderCountRow
	if err := q.DB.Raw(sqlStr, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query folder media counts: %w", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.FolderID] = row.Total
	}
	return counts, nil
}

// FolderAttachmentMeta returns the raw metadata blob of every media item that
// is assigned to a folder, tagged with its folder id. One scan serves the
// whole size rollup.
func (q *FolderQueries) FolderAttachmentMeta() ([]taxonomy.MetaRow, error) {
	queryBuilder := psql.Select("folder_id", "metadata").
		From("media").
		Where("folder_id IS NOT NULL")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for FolderAttachmentMeta: %w", err)
	}

	var rows []taxonomy.MetaRow
	if err := q.DB.Raw(sqlStr, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query folder attachment metadata: %w", err)
	}
	return rows, nil
}

// UnassignedAttachmentMeta returns the raw metadata blobs of media items with
// no folder relation.
func (q *FolderQueries) UnassignedAttachmentMeta() ([]string, error) {
	queryBuilder := psql.Select("metadata").
		From("media").
		Where("folder_id IS NULL")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for UnassignedAttachmentMeta: %w", err)
	}

	var blobs []string
	if err := q.DB.Raw(sqlStr, args...).Scan(&blobs).Error; err != nil {
		return nil, fmt.Errorf("failed to query unassigned attachment metadata: %w", err)
	}
	return blobs, nil
}

// CountUnassignedMedia counts media items with no folder relation without
// loading ids into memory.
func (q *FolderQueries) CountUnassignedMedia() (int64, error) {
	queryBuilder := psql.Select("COUNT(*)").
		From("media").
		Where("folder_id IS NULL")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build SQL query for CountUnassignedMedia: %w", err)
	}

	var count int64
	if err := q.DB.Raw(sqlStr, args...).Scan(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count unassigned media: %w", err)
	}
	return count, nil
}
