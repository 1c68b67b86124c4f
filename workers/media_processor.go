package workers

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"

	"github.com/foldsnap/foldsnapbackend/media"
	"github.com/foldsnap/foldsnapbackend/repository"
)

// TaskType constants
const (
	TaskThumbnail = "thumbnail"
	TaskMetadata  = "metadata"
)

// MediaJob asks the pool to run one task against one stored media item
type MediaJob struct {
	MediaID  uint
	TaskType string
}

// MediaProcessor runs thumbnail generation and metadata extraction off the
// request path. Jobs are deduplicated per (media, task) while queued or
// running.
type MediaProcessor struct {
	JobQueue         chan MediaJob
	Store            media.Store
	MediaRepo        repository.MediaRepositoryInterface
	ThumbnailMaxSize int
	Wg               sync.WaitGroup
	StopChan         chan struct{}
	Pending          map[string]bool
	Mutex            sync.Mutex
}

func NewMediaProcessor(store media.Store, mediaRepo repository.MediaRepositoryInterface, thumbnailMaxSize, queueSize, numWorkers int) *MediaProcessor {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	proc := &MediaProcessor{
		JobQueue:         make(chan MediaJob, queueSize),
		Store:            store,
		MediaRepo:        mediaRepo,
		ThumbnailMaxSize: thumbnailMaxSize,
		StopChan:         make(chan struct{}),
		Pending:          make(map[string]bool),
	}
	proc.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go proc.worker(i)
	}
	log.Info().Int("workers", numWorkers).Int("queue_size", queueSize).Msg("started media processing workers")
	return proc
}

func (mp *MediaProcessor) worker(id int) {
	defer mp.Wg.Done()
	log.Debug().Int("worker", id).Msg("media worker started")
	for {
		select {
		case job, ok := <-mp.JobQueue:
			if !ok {
				log.Debug().Int("worker", id).Msg("media worker stopping: job queue closed")
				return
			}

			switch job.TaskType {
			case TaskThumbnail:
				mp.processThumbnailTask(job)
			case TaskMetadata:
				mp.processMetadataTask(job)
			default:
				log.Error().Int("worker", id).Str("task", job.TaskType).Uint("media_id", job.MediaID).Msg("unknown task type")
			}

			mp.Mutex.Lock()
			delete(mp.Pending, pendingKey(job))
			mp.Mutex.Unlock()

		case <-mp.StopChan:
			log.Debug().Int("worker", id).Msg("media worker stopping: stop signal received")
			return
		}
	}
}

// sourcePath resolves the stored original for a media item, confirming it
// still exists on disk.
func (mp *MediaProcessor) sourcePath(mediaID uint) (string, string, error) {
	item, err := mp.MediaRepo.GetByID(mediaID)
	if err != nil {
		return "", "", fmt.Errorf("media %d not found: %w", mediaID, err)
	}
	fullPath, err := mp.Store.GetFullPath(media.AssetTypeUpload, item.Path)
	if err != nil {
		return "", "", err
	}
	if _, err := os.Stat(fullPath); err != nil {
		return "", "", fmt.Errorf("original file missing for media %d: %w", mediaID, err)
	}
	return fullPath, item.Filename, nil
}

func (mp *MediaProcessor) processThumbnailTask(job MediaJob) {
	fullPath, filename, err := mp.sourcePath(job.MediaID)
	if err != nil {
		log.Warn().Err(err).Uint("media_id", job.MediaID).Msg("skipping thumbnail task")
		return
	}
	if !media.IsRasterImage(filename) {
		return
	}

	src, err := imaging.Open(fullPath, imaging.AutoOrientation(true))
	if err != nil {
		log.Error().Err(err).Uint("media_id", job.MediaID).Msg("failed to decode image for thumbnail")
		return
	}
	thumb := imaging.Fit(src, mp.ThumbnailMaxSize, mp.ThumbnailMaxSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		log.Error().Err(err).Uint("media_id", job.MediaID).Msg("failed to encode thumbnail")
		return
	}

	thumbKey, err := mp.Store.Save(media.AssetTypeThumbnail, "thumb.jpg", &buf)
	if err != nil {
		log.Error().Err(err).Uint("media_id", job.MediaID).Msg("failed to store thumbnail")
		return
	}

	if err := mp.MediaRepo.SetThumbnailPath(job.MediaID, thumbKey); err != nil {
		mp.Store.Delete(media.AssetTypeThumbnail, thumbKey)
		log.Error().Err(err).Uint("media_id", job.MediaID).Msg("failed to record thumbnail path")
		return
	}
	log.Debug().Uint("media_id", job.MediaID).Str("thumbnail", thumbKey).Msg("generated thumbnail")
}

func (mp *MediaProcessor) processMetadataTask(job MediaJob) {
	fullPath, _, err := mp.sourcePath(job.MediaID)
	if err != nil {
		log.Warn().Err(err).Uint("media_id", job.MediaID).Msg("skipping metadata task")
		return
	}

	meta, err := media.ExtractMetadata(fullPath)
	if err != nil {
		log.Error().Err(err).Uint("media_id", job.MediaID).Msg("failed to extract metadata")
		return
	}
	blob, err := meta.Encode()
	if err != nil {
		log.Error().Err(err).Uint("media_id", job.MediaID).Msg("failed to encode metadata")
		return
	}

	if err := mp.MediaRepo.UpdateMetadata(job.MediaID, blob); err != nil {
		log.Error().Err(err).Uint("media_id", job.MediaID).Msg("failed to record metadata")
		return
	}
	log.Debug().Uint("media_id", job.MediaID).Int64("filesize", meta.FileSize).Msg("extracted metadata")
}

func pendingKey(job MediaJob) string {
	return fmt.Sprintf("%d:%s", job.MediaID, job.TaskType)
}

// QueueJob queues a specific task if not already pending
func (mp *MediaProcessor) QueueJob(job MediaJob) bool {
	key := pendingKey(job)

	mp.Mutex.Lock()
	if mp.Pending[key] {
		mp.Mutex.Unlock()
		return false
	}
	mp.Pending[key] = true
	mp.Mutex.Unlock()

	select {
	case mp.JobQueue <- job:
		return true
	default:
		log.Warn().Str("task", job.TaskType).Uint("media_id", job.MediaID).Msg("media job queue full, dropping task")
		mp.Mutex.Lock()
		delete(mp.Pending, key)
		mp.Mutex.Unlock()
		return false
	}
}

func (mp *MediaProcessor) Stop() {
	log.Info().Msg("stopping media processor workers")
	close(mp.StopChan)
	mp.Wg.Wait()
	log.Info().Msg("all media processor workers stopped")
}
