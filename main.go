package main

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/foldsnap/foldsnapbackend/cache"
	"github.com/foldsnap/foldsnapbackend/config"
	"github.com/foldsnap/foldsnapbackend/database"
	"github.com/foldsnap/foldsnapbackend/handlers"
	"github.com/foldsnap/foldsnapbackend/media"
	"github.com/foldsnap/foldsnapbackend/permissions"
	"github.com/foldsnap/foldsnapbackend/repository"
	"github.com/foldsnap/foldsnapbackend/taxonomy"
	"github.com/foldsnap/foldsnapbackend/workers"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	storagePaths := []string{cfg.UploadsPath, cfg.ThumbnailsPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatal().Err(err).Str("path", p).Msg("failed to create storage directory")
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	var sharedCache cache.Cache
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr)
		if err := redisCache.Ping(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
		}
		sharedCache = redisCache
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis aggregate cache")
	} else {
		sharedCache = cache.NewMemoryCache()
		log.Info().Msg("REDIS_ADDR not set, using in-process aggregate cache")
	}

	uploadsSubDir := filepath.Base(cfg.UploadsPath)
	thumbsSubDir := filepath.Base(cfg.ThumbnailsPath)
	mediaSubDirs := map[media.AssetType]string{
		media.AssetTypeUpload:    uploadsSubDir,
		media.AssetTypeThumbnail: thumbsSubDir,
	}
	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, mediaSubDirs)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize media store")
	}

	folderQueries := database.NewFolderQueries(db)
	namingPolicy := taxonomy.NewNamingPolicy(folderQueries)
	aggregator := taxonomy.NewAggregator(folderQueries, sharedCache)

	mediaRepo := repository.NewMediaRepository(db)
	folderRepo := repository.NewFolderRepository(db, folderQueries, namingPolicy, aggregator, mediaRepo)
	userRepo := repository.NewUserRepository(db)

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if err := userRepo.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure bootstrap admin")
		}
	}

	mediaProcessor := workers.NewMediaProcessor(mediaStore, mediaRepo, cfg.ThumbnailMaxSize, cfg.MediaQueueSize, cfg.NumMediaWorkers)
	defer mediaProcessor.Stop()

	jwtSecret := []byte(cfg.JWTSecret)
	authHandler := handlers.NewAuthHandler(userRepo, jwtSecret)
	folderHandler := handlers.NewFolderHandler(folderRepo)
	mediaHandler := handlers.NewMediaHandler(mediaRepo, mediaStore, mediaProcessor, uploadsSubDir, thumbsSubDir, cfg.DefaultPerPage, cfg.MaxPerPage)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "X-Total-Count", "X-Total-Pages"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	requireManageMedia := func(next http.HandlerFunc) http.Handler {
		return handlers.AuthMiddleware(userRepo, jwtSecret,
			handlers.RequirePermission(permissions.ManageMedia, next))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Method(http.MethodGet, "/auth/me", handlers.AuthMiddleware(userRepo, jwtSecret, http.HandlerFunc(authHandler.CurrentUser)))

		r.Route("/folders", func(r chi.Router) {
			r.Method(http.MethodGet, "/", requireManageMedia(folderHandler.GetFolders))
			r.Method(http.MethodPost, "/", requireManageMedia(folderHandler.CreateFolder))
			r.Route("/{id}", func(r chi.Router) {
				r.Method(http.MethodPut, "/", requireManageMedia(folderHandler.UpdateFolder))
				r.Method(http.MethodDelete, "/", requireManageMedia(folderHandler.DeleteFolder))
				r.Method(http.MethodPost, "/media", requireManageMedia(folderHandler.AssignMedia))
				r.Method(http.MethodDelete, "/media", requireManageMedia(folderHandler.RemoveMedia))
			})
		})

		r.Route("/media", func(r chi.Router) {
			r.Method(http.MethodGet, "/", requireManageMedia(mediaHandler.ListMedia))
			r.Method(http.MethodPost, "/", requireManageMedia(mediaHandler.UploadMedia))
		})

		r.Get("/"+uploadsSubDir+"/*", handlers.AssetServer(cfg.MediaStoragePath, uploadsSubDir))
		r.Get("/"+thumbsSubDir+"/*", handlers.AssetServer(cfg.MediaStoragePath, thumbsSubDir))
	})

	serverAddr := ":" + cfg.Port
	log.Info().Str("addr", serverAddr).Msg("server listening")
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
