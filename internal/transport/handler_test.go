package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go-photo-insight/internal/analyzer"
	"go-photo-insight/internal/config"
	"go-photo-insight/internal/observer"
	"go-photo-insight/internal/provider/mock"
	"go-photo-insight/internal/repository"
	"go-photo-insight/internal/service"
	"go-photo-insight/internal/storage"
	"go-photo-insight/internal/vision"
	"go-photo-insight/pkg/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Host:               "127.0.0.1",
		Port:               "8080",
		RequestTimeout:     10 * time.Second,
		SignalTimeout:      5 * time.Second,
		ImageFetchTimeout:  5 * time.Second,
		MaxRequestBodySize: 8 * 1024 * 1024,
		MaxImageDimension:  800,
		Language:           "en",
		Provider:           "mock",
	}
}

func encodeTestPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 30, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func newTestHandler(t *testing.T) (http.Handler, service.RecordService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	m := mock.New()
	providers := vision.ProviderSet{Objects: m, Scenes: m, Faces: m}
	gate := vision.NewReadinessGate(providers)
	if err := gate.EnsureReady(context.Background()); err != nil {
		t.Fatalf("Failed to initialize providers: %v", err)
	}

	repo := repository.NewMemoryRecordRepository()
	pool := service.NewWorkerPool(2)
	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(metrics)

	aggregator := analyzer.NewAggregator(vision.NewAdapters(providers, cfg.SignalTimeout), cfg.MaxImageDimension)
	records := service.NewRecordService(repo, aggregator, gate, pool, publisher,
		analyzer.LanguageEnglish, cfg.RequestTimeout)
	t.Cleanup(records.Close)

	fetcher := storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout)
	return NewHandler(records, fetcher, metrics, cfg), records
}

func waitForCompletion(t *testing.T, records service.RecordService, id string) *models.ImageRecord {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		record, err := records.Get(id)
		if err != nil {
			t.Fatalf("Failed to load record: %v", err)
		}
		if record.Status == models.StatusCompleted || record.Status == models.StatusError {
			return record
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Record never finished analyzing")
	return nil
}

func TestHandler_HealthCheck(t *testing.T) {
	handler, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestHandler_SubmitUpload(t *testing.T) {
	handler, records := newTestHandler(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("images", "photo.png")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	part.Write(encodeTestPNG(t))
	writer.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/images", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.SubmitResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(resp.Records))
	}
	if resp.Records[0].Status != models.StatusPending {
		t.Errorf("Expected pending record, got %s", resp.Records[0].Status)
	}
	if resp.Records[0].Name != "photo.png" {
		t.Errorf("Expected name photo.png, got %s", resp.Records[0].Name)
	}

	record := waitForCompletion(t, records, resp.Records[0].ID)
	if record.Status != models.StatusCompleted {
		t.Errorf("Expected completed analysis, got %s (%s)", record.Status, record.Error)
	}
	if record.Analysis == nil || len(record.Analysis.Colors) == 0 {
		t.Error("Expected analysis with dominant colors")
	}
}

func TestHandler_SubmitUpload_NoFiles(t *testing.T) {
	handler, _ := newTestHandler(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	writer.WriteField("expected_text", "hello")
	writer.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/images", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestHandler_SubmitUpload_CorruptImage(t *testing.T) {
	handler, _ := newTestHandler(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("images", "junk.bin")
	part.Write([]byte("this is not an image"))
	writer.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/images", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for corrupt image, got %d", w.Code)
	}
}

func TestHandler_SubmitByURL(t *testing.T) {
	handler, records := newTestHandler(t)

	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(encodeTestPNG(t))
	}))
	defer imageServer.Close()

	payload := fmt.Sprintf(`{"urls": ["%s/photo.png"]}`, imageServer.URL)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/images/url", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.SubmitResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(resp.Records))
	}

	record := waitForCompletion(t, records, resp.Records[0].ID)
	if record.Status != models.StatusCompleted {
		t.Errorf("Expected completed analysis, got %s (%s)", record.Status, record.Error)
	}
}

func TestHandler_SubmitByURL_InvalidPayloads(t *testing.T) {
	handler, _ := newTestHandler(t)

	tests := []struct {
		name    string
		payload string
	}{
		{"Empty body", ``},
		{"No urls", `{"urls": []}`},
		{"Malformed url", `{"urls": ["not a url"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/images/url", bytes.NewBufferString(tt.payload))
			req.Header.Set("Content-Type", "application/json")
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", w.Code)
			}
		})
	}
}

func TestHandler_GetAndList(t *testing.T) {
	handler, records := newTestHandler(t)

	submitted, err := records.Submit(context.Background(), []service.ImageHandle{
		newHandleFromPNG(t, "a.png"),
		newHandleFromPNG(t, "b.png"),
	})
	if err != nil {
		t.Fatalf("Failed to submit: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/images", nil)
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var list models.RecordListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if list.Total != 2 || len(list.Records) != 2 {
		t.Errorf("Expected 2 records, got total=%d len=%d", list.Total, len(list.Records))
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/images/"+submitted[0].ID, nil)
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for existing record, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/images/no-such-id", nil)
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown record, got %d", w.Code)
	}
}

func TestHandler_ClearRecords(t *testing.T) {
	handler, records := newTestHandler(t)

	if _, err := records.Submit(context.Background(), []service.ImageHandle{
		newHandleFromPNG(t, "a.png"),
	}); err != nil {
		t.Fatalf("Failed to submit: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/images", nil)
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if len(records.List()) != 0 {
		t.Error("Expected records cleared")
	}
}

func TestHandler_Metrics(t *testing.T) {
	handler, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var metrics map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &metrics); err != nil {
		t.Fatalf("Failed to decode metrics: %v", err)
	}
	if _, ok := metrics["total_analyses"]; !ok {
		t.Error("Expected total_analyses metric")
	}
}

func newHandleFromPNG(t *testing.T, name string) service.ImageHandle {
	t.Helper()
	data := encodeTestPNG(t)
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to decode test image: %v", err)
	}
	return service.ImageHandle{
		Name:        name,
		Size:        int64(len(data)),
		MimeType:    "image/png",
		Surface:     img,
		SourceBytes: data,
	}
}
