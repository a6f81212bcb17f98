package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
)

const (
	MaxImageSize = 10 * 1024 * 1024 // 10MB
)

var (
	ErrFileSize = errors.New("file size exceeds limit of 10MB")
	ErrFileType = errors.New("invalid file type. Allowed types: JPG, PNG, WEBP")

	allowedExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
	}
)

// Validate checks size and extension before any decoding happens.
func Validate(file *multipart.FileHeader) error {
	if file == nil {
		return errors.New("no file provided")
	}
	if file.Size > MaxImageSize {
		return ErrFileSize
	}
	ext := filepath.Ext(strings.ToLower(file.Filename))
	if !allowedExtensions[ext] {
		return ErrFileType
	}
	return nil
}

// Process validates, decodes and re-encodes an uploaded cigar photo.
// Re-encoding strips whatever the phone camera put in the file and keeps
// uploads at a predictable quality.
func Process(file *multipart.FileHeader) (*bytes.Buffer, string, error) {
	if err := Validate(file); err != nil {
		return nil, "", err
	}

	src, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("could not open file: %v", err)
	}
	defer src.Close()

	img, format, err := image.Decode(src)
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image: %v", err)
	}

	buf := new(bytes.Buffer)

	switch format {
	case "jpeg":
		err = jpeg.Encode(buf, img, &jpeg.Options{Quality: 85})
	case "png":
		err = png.Encode(buf, img)
	case "webp":
		err = webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: 85})
	default:
		return nil, "", fmt.Errorf("unsupported image format: %s", format)
	}

	if err != nil {
		return nil, "", fmt.Errorf("could not encode image: %v", err)
	}

	contentType := fmt.Sprintf("image/%s", format)

	return buf, contentType, nil
}
