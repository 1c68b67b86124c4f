package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// AssetServer creates a handler to serve static files from a specific base directory.
// it expects the request path to contain the relative path within that base directory.
// example usage in main.go:
//
//	r.Get("/api/uploads/*", AssetServer(cfg.MediaStoragePath, "uploads"))
//	r.Get("/api/thumbnails/*", AssetServer(cfg.MediaStoragePath, "thumbnails"))
//
// where the route prefix matches the subDir.
func AssetServer(baseStoragePath, subDir string) http.HandlerFunc {
	fullAssetDirPath := filepath.Join(baseStoragePath, subDir)
	fullAssetDirPath = filepath.Clean(fullAssetDirPath)
	log.Info().Str("route", "/api/"+subDir+"/*").Str("dir", fullAssetDirPath).Msg("serving assets")

	if !strings.HasPrefix(fullAssetDirPath, filepath.Clean(baseStoragePath)) {
		log.Fatal().Str("sub_dir", subDir).Str("base", baseStoragePath).Msg("asset subdirectory resolves outside base storage path")
	}

	return func(w http.ResponseWriter, r *http.Request) {
		// e.g., for route /api/uploads/* and request /api/uploads/key.jpg, extract "key.jpg"
		routePrefix := "/api/" + subDir + "/"
		relativePath := strings.TrimPrefix(r.URL.Path, routePrefix)

		if relativePath == "" || strings.Contains(relativePath, "..") {
			http.Error(w, "Invalid asset path", http.StatusBadRequest)
			return
		}

		requestedAssetPath := filepath.Join(fullAssetDirPath, relativePath)
		cleanedAssetPath := filepath.Clean(requestedAssetPath)

		if !strings.HasPrefix(cleanedAssetPath, fullAssetDirPath) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			log.Warn().Str("request", r.URL.Path).Str("resolved", cleanedAssetPath).Msg("attempted asset access outside designated directory")
			return
		}

		if _, err := os.Stat(cleanedAssetPath); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		} else if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			log.Error().Err(err).Str("path", cleanedAssetPath).Msg("error stating asset file")
			return
		}

		cacheDuration := 24 * time.Hour
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(cacheDuration.Seconds())))
		w.Header().Set("Expires", time.Now().Add(cacheDuration).Format(http.TimeFormat))

		http.ServeFile(w, r, cleanedAssetPath)
	}
}
