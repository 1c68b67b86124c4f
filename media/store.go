package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// AssetType identifies a storage bucket for generated or uploaded assets
type AssetType string

const (
	AssetTypeUpload    AssetType = "upload"
	AssetTypeThumbnail AssetType = "thumbnail"
)

// Store defines the interface for saving, retrieving, and deleting media assets
type Store interface {
	// Save stores data under a generated object key, keeping the hint's
	// extension. Returns the key (path relative to the asset directory).
	Save(assetType AssetType, filenameHint string, data io.Reader) (string, error)
	// Delete removes an asset
	Delete(assetType AssetType, relativePath string) error
	// GetFullPath returns the absolute filesystem path for an asset key
	GetFullPath(assetType AssetType, relativePath string) (string, error)
	// EnsureDir makes sure a specific asset type directory exists
	EnsureDir(assetType AssetType) (string, error)
}

// LocalStorage implements the Store interface using the local filesystem
type LocalStorage struct {
	basePath        string               // absolute path to the MEDIA_STORAGE_PATH
	resolvedPathMap map[AssetType]string // maps AssetType to full absolute path
}

// NewLocalStorage creates a new local filesystem store
func NewLocalStorage(basePath string, subDirs map[AssetType]string) (*LocalStorage, error) {
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid base storage path '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absBasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base storage directory '%s': %w", absBasePath, err)
	}

	resolvedPaths := make(map[AssetType]string)
	for assetType, subDir := range subDirs {
		fullPath := filepath.Join(absBasePath, subDir)
		if !strings.HasPrefix(filepath.Clean(fullPath), absBasePath) {
			return nil, fmt.Errorf("invalid subdirectory configuration: '%s' resolves outside base path '%s'", subDir, absBasePath)
		}
		resolvedPaths[assetType] = fullPath
	}

	return &LocalStorage{
		basePath:        absBasePath,
		resolvedPathMap: resolvedPaths,
	}, nil
}

func (ls *LocalStorage) getAssetTypeDir(assetType AssetType) (string, error) {
	dirPath, ok := ls.resolvedPathMap[assetType]
	if !ok {
		return "", fmt.Errorf("asset type '%s' is not configured", assetType)
	}
	return dirPath, nil
}

// EnsureDir creates the directory for the asset type if it doesn't exist
func (ls *LocalStorage) EnsureDir(assetType AssetType) (string, error) {
	dirPath, err := ls.getAssetTypeDir(assetType)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create asset directory '%s': %w", dirPath, err)
	}
	return dirPath, nil
}

// Save writes data to a uuid-named file, keeping the extension of the
// original filename so mime sniffing and serving behave sensibly.
func (ls *LocalStorage) Save(assetType AssetType, filenameHint string, data io.Reader) (string, error) {
	dirPath, err := ls.EnsureDir(assetType)
	if err != nil {
		return "", err
	}

	key, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate object key: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(filenameHint))
	filename := key.String() + ext

	fullPath := filepath.Join(dirPath, filename)
	out, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create asset file '%s': %w", fullPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, data); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write asset file '%s': %w", fullPath, err)
	}

	return filename, nil
}

// GetFullPath resolves an asset key to an absolute path, refusing anything
// that escapes the asset directory.
func (ls *LocalStorage) GetFullPath(assetType AssetType, relativePath string) (string, error) {
	dirPath, err := ls.getAssetTypeDir(assetType)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Clean(filepath.Join(dirPath, relativePath))
	if !strings.HasPrefix(fullPath, dirPath) {
		return "", fmt.Errorf("asset path '%s' resolves outside its directory", relativePath)
	}
	return fullPath, nil
}

// Delete removes an asset
func (ls *LocalStorage) Delete(assetType AssetType, relativePath string) error {
	fullPath, err := ls.GetFullPath(assetType, relativePath)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete asset '%s': %w", relativePath, err)
	}
	return nil
}
