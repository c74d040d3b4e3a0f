// Package ollama backs the object-detection and scene-classification
// capabilities with a local Ollama vision model.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/ollama/ollama/api"

	"go-photo-insight/internal/vision"
)

const detectPrompt = `Look at this photo and answer with strict JSON only, no prose:
{"objects":[{"category":"<singular lowercase noun>","score":<0..1>}],` +
	`"scenes":[{"label":"<lowercase scene word>","probability":<0..1>}]}
List at most 5 objects and 3 scenes, best first.`

// Provider implements vision.ObjectDetector and vision.SceneClassifier by
// prompting an Ollama vision model for a JSON summary of the photo
type Provider struct {
	client *api.Client
	model  string
}

var (
	_ vision.ObjectDetector  = (*Provider)(nil)
	_ vision.SceneClassifier = (*Provider)(nil)
)

// New creates a provider talking to the given Ollama host
func New(host, model string) (*Provider, error) {
	parsed, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host: %w", err)
	}
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &Provider{
		client: api.NewClient(base, http.DefaultClient),
		model:  model,
	}, nil
}

type modelSummary struct {
	Objects []vision.Detection  `json:"objects"`
	Scenes  []vision.SceneLabel `json:"scenes"`
}

// Detect asks the model for object labels
func (p *Provider) Detect(ctx context.Context, surface image.Image) ([]vision.Detection, error) {
	summary, err := p.summarize(ctx, surface)
	if err != nil {
		return nil, err
	}
	return summary.Objects, nil
}

// Classify asks the model for scene labels sorted by descending probability
func (p *Provider) Classify(ctx context.Context, surface image.Image) ([]vision.SceneLabel, error) {
	summary, err := p.summarize(ctx, surface)
	if err != nil {
		return nil, err
	}
	scenes := summary.Scenes
	sort.SliceStable(scenes, func(i, j int) bool {
		return scenes[i].Probability > scenes[j].Probability
	})
	return scenes, nil
}

func (p *Provider) summarize(ctx context.Context, surface image.Image) (*modelSummary, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, surface, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode surface for model: %w", err)
	}

	streamFalse := false
	req := &api.ChatRequest{
		Model: p.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: detectPrompt,
				Images:  []api.ImageData{api.ImageData(buf.Bytes())},
			},
		},
		Stream: &streamFalse,
	}

	var responseContent string
	err := p.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		responseContent = resp.Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat error: %w", err)
	}
	if responseContent == "" {
		return nil, fmt.Errorf("empty response from ollama")
	}

	return parseSummary(responseContent)
}

// parseSummary parses the model's JSON, tolerating code fences, comments and
// trailing commas. Non-JSON responses degrade to an empty summary rather
// than an error so a chatty model does not fail the signal.
func parseSummary(raw string) (*modelSummary, error) {
	raw = sanitizeModelJSON(raw)
	if !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		return &modelSummary{}, nil
	}

	var summary modelSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start >= 0 && end > start {
			if err2 := json.Unmarshal([]byte(raw[start:end+1]), &summary); err2 != nil {
				return &modelSummary{}, nil
			}
		} else {
			return &modelSummary{}, nil
		}
	}
	return &summary, nil
}

var (
	reBlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLineComment  = regexp.MustCompile(`(?m)^\s*//.*$`)
	reTrailing     = regexp.MustCompile(`,(\s*[}\]])`)
)

// sanitizeModelJSON removes code fences, comments, and trailing commas from
// a model response
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	raw = reBlockComment.ReplaceAllString(raw, "")
	raw = reLineComment.ReplaceAllString(raw, "")
	raw = reTrailing.ReplaceAllString(raw, "$1")

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}
