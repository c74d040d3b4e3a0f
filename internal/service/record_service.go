package service

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-photo-insight/internal/analyzer"
	apperrors "go-photo-insight/internal/errors"
	"go-photo-insight/internal/logger"
	"go-photo-insight/internal/metadata"
	"go-photo-insight/internal/observer"
	"go-photo-insight/internal/repository"
	"go-photo-insight/internal/vision"
	"go-photo-insight/pkg/models"
)

// ImageHandle carries one decoded image through the pipeline together with
// its undecoded source bytes, which the EXIF extractor needs.
type ImageHandle struct {
	Name         string
	Size         int64
	MimeType     string
	Surface      image.Image
	SourceBytes  []byte
	ExpectedText string
}

// RecordService drives the per-image record lifecycle from submission
// through analysis to background enrichment
type RecordService interface {
	Submit(ctx context.Context, handles []ImageHandle) ([]*models.ImageRecord, error)
	Get(id string) (*models.ImageRecord, error)
	List() []*models.ImageRecord
	Retry(ctx context.Context, id string) (*models.ImageRecord, error)
	RetryAllFailed(ctx context.Context) ([]*models.ImageRecord, error)
	ClearAll() int
	Close()
}

type recordService struct {
	repo       repository.RecordRepository
	aggregator *analyzer.Aggregator
	gate       *vision.ReadinessGate
	pool       *WorkerPool
	publisher  observer.Subject
	language   analyzer.Language

	analysisTimeout time.Duration

	mu      sync.Mutex
	sources map[string]*ImageHandle

	queue     chan string
	closeOnce sync.Once
	done      chan struct{}
}

// NewRecordService creates the record lifecycle service and starts its
// analysis loop. Analyses run one at a time in submission order; metadata
// enrichment runs on the worker pool and never blocks the loop.
func NewRecordService(
	repo repository.RecordRepository,
	aggregator *analyzer.Aggregator,
	gate *vision.ReadinessGate,
	pool *WorkerPool,
	publisher observer.Subject,
	language analyzer.Language,
	analysisTimeout time.Duration,
) RecordService {
	if analysisTimeout <= 0 {
		analysisTimeout = 60 * time.Second
	}

	s := &recordService{
		repo:            repo,
		aggregator:      aggregator,
		gate:            gate,
		pool:            pool,
		publisher:       publisher,
		language:        language,
		analysisTimeout: analysisTimeout,
		sources:         make(map[string]*ImageHandle),
		queue:           make(chan string, 256),
		done:            make(chan struct{}),
	}

	pool.Start()
	go s.analysisLoop()

	return s
}

var _ RecordService = (*recordService)(nil)

// Submit registers the given images as pending records and queues them for
// analysis. The returned snapshots reflect the pending state; callers poll
// or fetch later for results.
func (s *recordService) Submit(ctx context.Context, handles []ImageHandle) ([]*models.ImageRecord, error) {
	if err := s.gate.CheckReady(); err != nil {
		return nil, err
	}
	if len(handles) == 0 {
		return nil, apperrors.NewValidationError("no images submitted", nil)
	}

	records := make([]*models.ImageRecord, 0, len(handles))
	for i := range handles {
		handle := handles[i]
		record := &models.ImageRecord{
			ID:       uuid.NewString(),
			Name:     handle.Name,
			Size:     handle.Size,
			MimeType: handle.MimeType,
			Status:   models.StatusPending,
		}
		s.repo.Insert(record)

		s.mu.Lock()
		s.sources[record.ID] = &handle
		s.mu.Unlock()

		s.enqueue(record.ID)
		records = append(records, record)
	}

	return records, nil
}

// Get returns a snapshot of one record
func (s *recordService) Get(id string) (*models.ImageRecord, error) {
	record, err := s.repo.Get(id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("record not found", err)
		}
		return nil, apperrors.NewInternalError("failed to load record", err)
	}
	return record, nil
}

// List returns snapshots of all records in submission order
func (s *recordService) List() []*models.ImageRecord {
	return s.repo.List()
}

// Retry re-queues one record for a fresh analysis. A new analysis replaces
// the previous one entirely; enrichment belonging to the replaced analysis
// is discarded when it arrives.
func (s *recordService) Retry(ctx context.Context, id string) (*models.ImageRecord, error) {
	if err := s.gate.CheckReady(); err != nil {
		return nil, err
	}

	if _, err := s.repo.Get(id); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("record not found", err)
		}
		return nil, apperrors.NewInternalError("failed to load record", err)
	}

	s.mu.Lock()
	_, hasSource := s.sources[id]
	s.mu.Unlock()
	if !hasSource {
		return nil, apperrors.NewValidationError("image source is no longer available for retry", nil)
	}

	if err := s.repo.SetStatus(id, models.StatusPending); err != nil {
		return nil, apperrors.NewInternalError("failed to reset record", err)
	}
	s.enqueue(id)

	return s.repo.Get(id)
}

// RetryAllFailed re-queues every record currently in the error state
func (s *recordService) RetryAllFailed(ctx context.Context) ([]*models.ImageRecord, error) {
	if err := s.gate.CheckReady(); err != nil {
		return nil, err
	}

	retried := make([]*models.ImageRecord, 0)
	for _, record := range s.repo.List() {
		if record.Status != models.StatusError {
			continue
		}
		snapshot, err := s.Retry(ctx, record.ID)
		if err != nil {
			logger.WithField("record_id", record.ID).WithError(err).Warn("Skipping failed record during bulk retry")
			continue
		}
		retried = append(retried, snapshot)
	}
	return retried, nil
}

// ClearAll wipes the record store and the retained image sources
func (s *recordService) ClearAll() int {
	s.mu.Lock()
	s.sources = make(map[string]*ImageHandle)
	s.mu.Unlock()

	dropped := s.repo.Clear()
	s.publisher.NotifyObservers(context.Background(), observer.RecordEvent{
		EventType: observer.RecordsCleared,
		Timestamp: time.Now(),
		Success:   true,
		Metadata:  map[string]interface{}{"dropped": dropped},
	})
	return dropped
}

// Close stops the analysis loop and drains the enrichment pool
func (s *recordService) Close() {
	s.closeOnce.Do(func() {
		close(s.queue)
		<-s.done
		s.pool.Wait()
		s.pool.Close()
	})
}

func (s *recordService) enqueue(id string) {
	s.queue <- id
}

// analysisLoop consumes queued record IDs one at a time, so results always
// land in submission order
func (s *recordService) analysisLoop() {
	defer close(s.done)
	for id := range s.queue {
		s.analyzeRecord(id)
	}
}

func (s *recordService) analyzeRecord(id string) {
	s.mu.Lock()
	handle := s.sources[id]
	s.mu.Unlock()
	if handle == nil {
		// Cleared while queued; nothing to do
		return
	}

	if err := s.repo.SetStatus(id, models.StatusAnalyzing); err != nil {
		// Record was cleared while queued
		return
	}

	started := time.Now()
	s.publisher.NotifyObservers(context.Background(), observer.RecordEvent{
		EventType: observer.AnalysisStarted,
		Timestamp: started,
		RecordID:  id,
		ImageName: handle.Name,
	})

	ctx, cancel := context.WithTimeout(context.Background(), s.analysisTimeout)
	defer cancel()

	analysis, err := s.aggregator.Analyze(ctx, handle.Surface, analyzer.Options{
		Language:     s.language,
		ExpectedText: handle.ExpectedText,
	})
	if err != nil {
		if setErr := s.repo.SetError(id, err.Error()); setErr != nil {
			logger.WithField("record_id", id).WithError(setErr).Warn("Failed to mark record as errored")
		}
		s.publisher.NotifyObservers(context.Background(), observer.RecordEvent{
			EventType:      observer.AnalysisFailed,
			Timestamp:      time.Now(),
			RecordID:       id,
			ImageName:      handle.Name,
			ProcessingTime: time.Since(started),
			ErrorMessage:   err.Error(),
		})
		return
	}

	generation, err := s.repo.AttachAnalysis(id, analysis)
	if err != nil {
		// Record was cleared mid-analysis
		logger.WithField("record_id", id).WithError(err).Debug("Discarding analysis for missing record")
		return
	}

	s.publisher.NotifyObservers(context.Background(), observer.RecordEvent{
		EventType:      observer.AnalysisCompleted,
		Timestamp:      time.Now(),
		RecordID:       id,
		ImageName:      handle.Name,
		ProcessingTime: time.Since(started),
		Success:        true,
	})

	sourceBytes := handle.SourceBytes
	s.pool.Submit(func() {
		s.enrichRecord(id, generation, sourceBytes)
	})
}

// enrichRecord extracts EXIF metadata in the background and merges it into
// the analysis it was started for. If a newer analysis has replaced that
// one, the merge is dropped.
func (s *recordService) enrichRecord(id string, generation uint64, sourceBytes []byte) {
	partial := metadata.Extract(sourceBytes)
	if partial == nil {
		s.publisher.NotifyObservers(context.Background(), observer.RecordEvent{
			EventType: observer.MetadataSkipped,
			Timestamp: time.Now(),
			RecordID:  id,
			Metadata:  map[string]interface{}{"reason": "no_metadata"},
		})
		return
	}

	err := s.repo.MergeMetadata(id, generation, partial)
	switch {
	case err == nil:
		s.publisher.NotifyObservers(context.Background(), observer.RecordEvent{
			EventType: observer.MetadataMerged,
			Timestamp: time.Now(),
			RecordID:  id,
			Success:   true,
		})
	case errors.Is(err, repository.ErrStaleAnalysis), errors.Is(err, repository.ErrNoAnalysis):
		s.publisher.NotifyObservers(context.Background(), observer.RecordEvent{
			EventType: observer.MetadataSkipped,
			Timestamp: time.Now(),
			RecordID:  id,
			Metadata:  map[string]interface{}{"reason": "stale_analysis"},
		})
	case errors.Is(err, repository.ErrRecordNotFound):
		// Record cleared before enrichment finished
	default:
		merr := apperrors.NewMetadataError("metadata merge failed", err)
		logger.WithField("record_id", id).WithError(merr).Warn("Metadata merge failed")
	}
}
