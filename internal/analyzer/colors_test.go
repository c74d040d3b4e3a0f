package analyzer

import (
	"image"
	"image/color"
	"testing"
)

// fill paints a horizontal band of the image with one color
func fill(img *image.RGBA, yFrom, yTo int, c color.RGBA) {
	bounds := img.Bounds()
	for y := yFrom; y < yTo; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}

func TestDominantColors_RanksByFrequency(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	red := color.RGBA{R: 255, A: 255}
	green := color.RGBA{G: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}

	// Red covers half the surface, green a quarter, blue a quarter
	fill(img, 0, 32, red)
	fill(img, 32, 48, green)
	fill(img, 48, 64, blue)

	colors, err := DominantColors(img)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(colors) != 3 {
		t.Fatalf("Expected 3 colors, got %d", len(colors))
	}
	if colors[0] != "#ff0000" {
		t.Errorf("Expected #ff0000 first, got %s", colors[0])
	}
	rest := map[string]bool{colors[1]: true, colors[2]: true}
	if !rest["#00ff00"] || !rest["#0000ff"] {
		t.Errorf("Expected green and blue in remaining slots, got %v", colors[1:])
	}
}

func TestDominantColors_CapsAtThree(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	fill(img, 0, 24, color.RGBA{R: 255, A: 255})
	fill(img, 24, 40, color.RGBA{G: 255, A: 255})
	fill(img, 40, 56, color.RGBA{B: 255, A: 255})
	fill(img, 56, 64, color.RGBA{R: 255, G: 255, A: 255})

	colors, err := DominantColors(img)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(colors) != 3 {
		t.Errorf("Expected at most 3 colors, got %d", len(colors))
	}
}

func TestDominantColors_TieBreaksByFirstSeen(t *testing.T) {
	// Two colors with identical sample counts; the scan encounters the top
	// band first so it must rank first
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	fill(img, 0, 32, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	fill(img, 32, 64, color.RGBA{R: 4, G: 5, B: 6, A: 255})

	colors, err := DominantColors(img)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if colors[0] != "#010203" {
		t.Errorf("Expected first-seen color to win the tie, got %s", colors[0])
	}
}

func TestDominantColors_SingleColorImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	fill(img, 0, 32, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	colors, err := DominantColors(img)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(colors) != 1 || colors[0] != "#0a141e" {
		t.Errorf("Expected single color #0a141e, got %v", colors)
	}
}

func TestDominantColors_InvalidSurfaces(t *testing.T) {
	if _, err := DominantColors(nil); err == nil {
		t.Error("Expected error for nil surface")
	}
	if _, err := DominantColors(image.NewRGBA(image.Rect(0, 0, 0, 0))); err == nil {
		t.Error("Expected error for empty surface")
	}
}
