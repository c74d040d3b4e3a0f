// Package metadata parses embedded EXIF data (camera fields, GPS) from the
// original source bytes. It never touches pixel data and never fails the
// caller: a parse error or absent metadata yields an empty partial result.
package metadata

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"go-photo-insight/internal/logger"
	"go-photo-insight/pkg/models"
)

// Extract parses whatever metadata the source bytes carry. The returned
// partial may have any subset of fields set; nil means nothing was found.
func Extract(sourceBytes []byte) *models.Metadata {
	exifData, err := exif.Decode(bytes.NewReader(sourceBytes))
	if err != nil {
		// Most photos from screenshots or messaging apps simply carry no
		// EXIF block; this is the common case, not a failure
		logger.WithError(err).Debug("No EXIF data in source bytes")
		return nil
	}

	meta := &models.Metadata{
		CameraMake:   getString(exifData, exif.Make),
		CameraModel:  getString(exifData, exif.Model),
		ISO:          getInt(exifData, exif.ISOSpeedRatings),
		ExposureTime: getExposureTime(exifData),
		FNumber:      getRational(exifData, exif.FNumber),
	}

	if dt, err := exifData.DateTime(); err == nil {
		ts := dt.Unix()
		meta.TakenAt = &ts
	}

	if lat, long, err := exifData.LatLong(); err == nil {
		meta.Latitude = &lat
		meta.Longitude = &long
	}

	if meta.IsEmpty() {
		return nil
	}
	return meta
}

// getRational safely reads a rational tag (like FNumber) as a float
func getRational(exifData *exif.Exif, tagName exif.FieldName) *float64 {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		// sometimes stored as Int instead
		valInt, errInt := tag.Int(0)
		if errInt == nil {
			fVal := float64(valInt)
			return &fVal
		}
		return nil
	}
	val := float64(num) / float64(den)
	return &val
}

// getInt safely reads an integer tag (like ISO)
func getInt(exifData *exif.Exif, tagName exif.FieldName) *int {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	val, err := tag.Int(0)
	if err != nil {
		return nil
	}
	return &val
}

// getString safely reads a string tag, trimming null terminators
func getString(exifData *exif.Exif, tagName exif.FieldName) *string {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	val := strings.Trim(tag.String(), "\"\x00 ")
	if val == "" {
		return nil
	}
	return &val
}

// getExposureTime formats the exposure time as a display string, preferring
// the common 1/N fraction form
func getExposureTime(exifData *exif.Exif) *string {
	tag, err := exifData.Get(exif.ExposureTime)
	if err != nil || tag == nil {
		return nil
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		return nil
	}

	if num == 1 && den > 1 {
		s := fmt.Sprintf("1/%d", den)
		return &s
	}
	val := float64(num) / float64(den)
	if val >= 1.0 {
		s := fmt.Sprintf("%.1fs", val)
		return &s
	}
	s := fmt.Sprintf("%.4fs", val)
	return &s
}
