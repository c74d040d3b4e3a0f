package factory

import (
	"context"
	"fmt"
	"time"

	"go-photo-insight/internal/config"
	"go-photo-insight/internal/provider/mock"
	"go-photo-insight/internal/provider/ollama"
	"go-photo-insight/internal/provider/rekognition"
	"go-photo-insight/internal/provider/tesseract"
	"go-photo-insight/internal/storage"
	"go-photo-insight/internal/vision"
)

// ProviderType selects the backing vision provider set
type ProviderType string

const (
	// MockProvider answers deterministically without external services
	MockProvider ProviderType = "mock"
	// OllamaProvider uses a local vision model for objects and scenes
	OllamaProvider ProviderType = "ollama"
	// RekognitionProvider uses AWS Rekognition for all visual signals
	RekognitionProvider ProviderType = "rekognition"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
)

// ProviderFactory creates vision provider sets
type ProviderFactory interface {
	CreateProviderSet(ctx context.Context, providerType ProviderType) (vision.ProviderSet, error)
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateFetcher(storageType StorageType) (storage.ImageFetcher, error)
}

type providerFactory struct {
	cfg *config.Config
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config) ProviderFactory {
	return &providerFactory{cfg: cfg}
}

// CreateProviderSet builds the provider set for the given type. The mock and
// ollama sets pair with tesseract for text; rekognition covers text itself.
func (f *providerFactory) CreateProviderSet(ctx context.Context, providerType ProviderType) (vision.ProviderSet, error) {
	switch providerType {
	case MockProvider:
		m := mock.New()
		return vision.ProviderSet{
			Objects: m,
			Scenes:  m,
			Faces:   m,
			Text:    tesseract.New(f.cfg.TesseractLanguages),
		}, nil

	case OllamaProvider:
		p, err := ollama.New(f.cfg.OllamaHost, f.cfg.OllamaModel)
		if err != nil {
			return vision.ProviderSet{}, fmt.Errorf("ollama provider: %w", err)
		}
		// No face signal from the vision model; face analysis degrades to empty
		return vision.ProviderSet{
			Objects: p,
			Scenes:  p,
			Text:    tesseract.New(f.cfg.TesseractLanguages),
		}, nil

	case RekognitionProvider:
		p, err := rekognition.New(ctx, f.cfg.AWSRegion)
		if err != nil {
			return vision.ProviderSet{}, fmt.Errorf("rekognition provider: %w", err)
		}
		return vision.ProviderSet{
			Objects: p,
			Scenes:  p,
			Faces:   p,
			Text:    p,
		}, nil

	default:
		return vision.ProviderSet{}, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}

type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateFetcher creates a storage implementation based on the specified type
func (f *storageFactory) CreateFetcher(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPImageFetcher(f.cfg.ImageFetchTimeout), nil
	case AzureStorage:
		if f.cfg.AzureAccountName == "" || f.cfg.AzureAccountKey == "" {
			return nil, fmt.Errorf("azure storage requires AZURE_ACCOUNT_NAME and AZURE_ACCOUNT_KEY")
		}
		blob, err := storage.NewAzureStorage(f.cfg.AzureAccountName, f.cfg.AzureAccountKey)
		if err != nil {
			return nil, err
		}
		return &blobFetcher{blob: blob}, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// blobFetcher adapts BlobStorage to the ImageFetcher interface
type blobFetcher struct {
	blob storage.BlobStorage
}

func (b *blobFetcher) FetchImage(ctx context.Context, imageURL string) (*storage.FetchedImage, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return b.blob.GetImage(ctx, imageURL)
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	ProviderFactory ProviderFactory
	StorageFactory  StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		ProviderFactory: NewProviderFactory(cfg),
		StorageFactory:  NewStorageFactory(cfg),
	}
}
