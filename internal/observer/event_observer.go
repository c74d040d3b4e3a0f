package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RecordEvent describes a lifecycle event for one image record
type RecordEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	RecordID       string                 `json:"record_id"`
	ImageName      string                 `json:"image_name,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of record lifecycle event
type EventType string

const (
	// AnalysisStarted when a record enters the analyzing state
	AnalysisStarted EventType = "analysis_started"
	// AnalysisCompleted when an analysis is attached to a record
	AnalysisCompleted EventType = "analysis_completed"
	// AnalysisFailed when analysis fails and the record enters the error state
	AnalysisFailed EventType = "analysis_failed"
	// MetadataMerged when background enrichment lands on a record
	MetadataMerged EventType = "metadata_merged"
	// MetadataSkipped when enrichment was discarded as stale or empty
	MetadataSkipped EventType = "metadata_skipped"
	// RecordsCleared when the record store is wiped
	RecordsCleared EventType = "records_cleared"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event RecordEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event RecordEvent)
}

// LoggingObserver logs record lifecycle events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles record events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event RecordEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"record_id":       event.RecordID,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}

	if event.ImageName != "" {
		fields["image_name"] = event.ImageName
	}

	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}

	if event.Metadata != nil {
		for k, v := range event.Metadata {
			fields[k] = v
		}
	}

	switch event.EventType {
	case AnalysisStarted:
		o.logger.WithFields(fields).Info("Image analysis started")
	case AnalysisCompleted:
		o.logger.WithFields(fields).Info("Image analysis completed")
	case AnalysisFailed:
		o.logger.WithFields(fields).Error("Image analysis failed")
	case MetadataMerged:
		o.logger.WithFields(fields).Debug("Metadata enrichment merged")
	case MetadataSkipped:
		o.logger.WithFields(fields).Debug("Metadata enrichment skipped")
	case RecordsCleared:
		o.logger.WithFields(fields).Info("Record store cleared")
	default:
		o.logger.WithFields(fields).Info("Record event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects metrics from record lifecycle events
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalAnalyses       int64
	successfulAnalyses  int64
	failedAnalyses      int64
	mergedEnrichments   int64
	skippedEnrichments  int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles record events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event RecordEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case AnalysisStarted:
		o.totalAnalyses++
	case AnalysisCompleted:
		o.successfulAnalyses++
		o.totalProcessingTime += event.ProcessingTime
	case AnalysisFailed:
		o.failedAnalyses++
	case MetadataMerged:
		o.mergedEnrichments++
	case MetadataSkipped:
		o.skippedEnrichments++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.successfulAnalyses > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulAnalyses)
	}

	return map[string]interface{}{
		"total_analyses":        o.totalAnalyses,
		"successful_analyses":   o.successfulAnalyses,
		"failed_analyses":       o.failedAnalyses,
		"merged_enrichments":    o.mergedEnrichments,
		"skipped_enrichments":   o.skippedEnrichments,
		"total_processing_time": o.totalProcessingTime,
		"avg_processing_time":   avgProcessingTime,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() Subject {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event RecordEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
