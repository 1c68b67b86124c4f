package media

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

var supportedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// IsRasterImage checks if the filename has a common raster image extension
func IsRasterImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return supportedImageExtensions[ext]
}

// Metadata is the structured form of the blob stored on a media row. The
// 'filesize' key is the one the size aggregator reads; everything else is
// informational.
type Metadata struct {
	FileSize int64  `json:"filesize"`
	Width    *int   `json:"width,omitempty"`
	Height   *int   `json:"height,omitempty"`
	TakenAt  *int64 `json:"taken_at,omitempty"` // Unix timestamp from EXIF
}

// Encode serializes the metadata to the blob format stored on the media row.
func (m Metadata) Encode() (string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode media metadata: %w", err)
	}
	return string(raw), nil
}

// ExtractMetadata reads what it can from the stored file: byte size always,
// pixel dimensions and EXIF capture time for raster images. Per-field
// failures are not errors; the fields just stay unset.
func ExtractMetadata(fullPath string) (Metadata, error) {
	info, err := os.Stat(fullPath)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to stat media file '%s': %w", fullPath, err)
	}

	meta := Metadata{FileSize: info.Size()}
	if !IsRasterImage(fullPath) {
		return meta, nil
	}

	if file, err := os.Open(fullPath); err == nil {
		if cfg, _, err := image.DecodeConfig(file); err == nil {
			meta.Width = &cfg.Width
			meta.Height = &cfg.Height
		}
		file.Close()
	}

	if file, err := os.Open(fullPath); err == nil {
		if exifData, err := exif.Decode(file); err == nil {
			if takenAt, err := exifData.DateTime(); err == nil {
				unix := takenAt.Unix()
				meta.TakenAt = &unix
			}
		}
		file.Close()
	}

	return meta, nil
}
