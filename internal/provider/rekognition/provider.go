// Package rekognition backs the full capability set with AWS Rekognition.
// It is the cloud-hosted alternative to the local providers; the aggregator
// never knows which path produced a signal.
package rekognition

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"go-photo-insight/internal/vision"
)

const (
	// maxLabels bounds DetectLabels output; anything past this is noise for
	// the aggregation pipeline
	maxLabels = 20
	// minLabelConfidence is the percentage floor passed to Rekognition
	minLabelConfidence = 55.0
)

// emotionMap translates Rekognition emotion types onto the closed emotion
// set used by the analysis schema
var emotionMap = map[types.EmotionName]string{
	types.EmotionNameCalm:      "neutral",
	types.EmotionNameHappy:     "happy",
	types.EmotionNameSad:       "sad",
	types.EmotionNameAngry:     "angry",
	types.EmotionNameFear:      "fearful",
	types.EmotionNameDisgusted: "disgusted",
	types.EmotionNameSurprised: "surprised",
}

// Provider implements every vision capability over the Rekognition API
type Provider struct {
	client *rekognition.Client
}

var (
	_ vision.ObjectDetector  = (*Provider)(nil)
	_ vision.SceneClassifier = (*Provider)(nil)
	_ vision.FaceAnalyzer    = (*Provider)(nil)
	_ vision.TextRecognizer  = (*Provider)(nil)
)

// New creates a provider using the AWS default credential chain
func New(ctx context.Context, region string) (*Provider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &Provider{client: rekognition.NewFromConfig(awsCfg)}, nil
}

// Detect maps DetectLabels instances onto raw object detections
func (p *Provider) Detect(ctx context.Context, surface image.Image) ([]vision.Detection, error) {
	labels, err := p.detectLabels(ctx, surface)
	if err != nil {
		return nil, err
	}

	detections := make([]vision.Detection, 0, len(labels))
	for _, label := range labels {
		if label.Name == nil || len(label.Instances) == 0 {
			continue
		}
		detections = append(detections, vision.Detection{
			Category: strings.ToLower(*label.Name),
			Score:    float64(aws.ToFloat32(label.Confidence)) / 100,
		})
	}
	return detections, nil
}

// Classify maps instance-free DetectLabels output onto scene labels, sorted
// by descending probability
func (p *Provider) Classify(ctx context.Context, surface image.Image) ([]vision.SceneLabel, error) {
	labels, err := p.detectLabels(ctx, surface)
	if err != nil {
		return nil, err
	}

	scenes := make([]vision.SceneLabel, 0, len(labels))
	for _, label := range labels {
		// Labels without instances describe the overall scene rather than a
		// locatable object
		if label.Name == nil || len(label.Instances) > 0 {
			continue
		}
		scenes = append(scenes, vision.SceneLabel{
			Label:       strings.ToLower(*label.Name),
			Probability: float64(aws.ToFloat32(label.Confidence)) / 100,
		})
	}
	sort.SliceStable(scenes, func(i, j int) bool {
		return scenes[i].Probability > scenes[j].Probability
	})
	return scenes, nil
}

// DetectFaces maps Rekognition face details onto raw faces. Bounding boxes
// arrive in relative coordinates and are scaled to surface pixels.
func (p *Provider) DetectFaces(ctx context.Context, surface image.Image) ([]vision.RawFace, error) {
	encoded, err := encodeSurface(surface)
	if err != nil {
		return nil, err
	}

	output, err := p.client.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: encoded},
		Attributes: []types.Attribute{types.AttributeAll},
	})
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	bounds := surface.Bounds()
	width := float64(bounds.Dx())
	height := float64(bounds.Dy())

	faces := make([]vision.RawFace, 0, len(output.FaceDetails))
	for _, detail := range output.FaceDetails {
		face := vision.RawFace{
			Expressions: map[string]float64{},
		}
		if detail.BoundingBox != nil {
			face.Box = vision.RawBox{
				X:      float64(aws.ToFloat32(detail.BoundingBox.Left)) * width,
				Y:      float64(aws.ToFloat32(detail.BoundingBox.Top)) * height,
				Width:  float64(aws.ToFloat32(detail.BoundingBox.Width)) * width,
				Height: float64(aws.ToFloat32(detail.BoundingBox.Height)) * height,
			}
		}
		if detail.AgeRange != nil {
			low := float64(aws.ToInt32(detail.AgeRange.Low))
			high := float64(aws.ToInt32(detail.AgeRange.High))
			face.Age = (low + high) / 2
		}
		if detail.Gender != nil {
			face.Gender = strings.ToLower(string(detail.Gender.Value))
			face.GenderProbability = float64(aws.ToFloat32(detail.Gender.Confidence)) / 100
		}
		for _, emotion := range detail.Emotions {
			label, ok := emotionMap[emotion.Type]
			if !ok {
				continue
			}
			score := float64(aws.ToFloat32(emotion.Confidence)) / 100
			if score > face.Expressions[label] {
				face.Expressions[label] = score
			}
		}
		for _, landmark := range detail.Landmarks {
			face.Landmarks = append(face.Landmarks, image.Point{
				X: int(float64(aws.ToFloat32(landmark.X)) * width),
				Y: int(float64(aws.ToFloat32(landmark.Y)) * height),
			})
		}
		faces = append(faces, face)
	}
	return faces, nil
}

// Recognize joins detected text lines in reading order
func (p *Provider) Recognize(ctx context.Context, surface image.Image, languageHint string) (string, error) {
	encoded, err := encodeSurface(surface)
	if err != nil {
		return "", err
	}

	output, err := p.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: encoded},
	})
	if err != nil {
		return "", fmt.Errorf("detect text: %w", err)
	}

	var lines []string
	for _, detection := range output.TextDetections {
		if detection.Type != types.TextTypesLine || detection.DetectedText == nil {
			continue
		}
		lines = append(lines, *detection.DetectedText)
	}
	return strings.Join(lines, "\n"), nil
}

func (p *Provider) detectLabels(ctx context.Context, surface image.Image) ([]types.Label, error) {
	encoded, err := encodeSurface(surface)
	if err != nil {
		return nil, err
	}

	output, err := p.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: encoded},
		MaxLabels:     aws.Int32(maxLabels),
		MinConfidence: aws.Float32(minLabelConfidence),
	})
	if err != nil {
		return nil, fmt.Errorf("detect labels: %w", err)
	}
	return output.Labels, nil
}

func encodeSurface(surface image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, surface, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode surface: %w", err)
	}
	return buf.Bytes(), nil
}
