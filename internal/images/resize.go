// Package images normalizes uploaded photos: everything is re-encoded to JPEG
// at a fixed geometry so the rest of the app never deals with arbitrary
// dimensions or formats.
package images

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"wayfarer/internal/apperr"
)

const jpegQuality = 90

// IsImage gates uploads on the declared content type; decoding still fails
// closed on lying clients.
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// SaveUserPhoto crops the upload to a 500x500 square and writes
// <dir>/users/<name>.jpg.
func SaveUserPhoto(r io.Reader, dir, name string) (string, error) {
	return saveFill(r, filepath.Join(dir, "users"), name, 500, 500)
}

// SaveTourImage fits the upload to the 2000x1333 cover geometry and writes
// <dir>/tours/<name>.jpg.
func SaveTourImage(r io.Reader, dir, name string) (string, error) {
	return saveFill(r, filepath.Join(dir, "tours"), name, 2000, 1333)
}

func saveFill(r io.Reader, dir, name string, w, h int) (string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", apperr.Validation("not an image, please upload only images")
	}
	resized := imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	filename := name + ".jpg"
	path := filepath.Join(dir, filename)
	if err := imaging.Save(resized, path, imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return filename, nil
}
