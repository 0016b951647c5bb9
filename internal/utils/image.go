package utils

// image.go stores uploaded movie posters under the media root.  Uploads are
// accepted only when the bytes decode as a real JPEG or PNG image; anything
// else is rejected with ErrNotAnImage so handlers can answer 400.

import (
	"bytes"
	"errors"
	"image/jpeg" // registers JPEG decoding
	"image/png"  // registers PNG decoding
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrNotAnImage is returned when uploaded content does not decode as a
// supported image format.
var ErrNotAnImage = errors.New("not a valid image")

// maxImageBytes bounds how much of an upload is read into memory.
const maxImageBytes = 10 << 20 // 10 MiB

// SaveImage validates r as a JPEG or PNG image and writes it to
// <mediaRoot>/<subdir>/<uuid>.<ext>.  It returns the stored path relative
// to the media root, using forward slashes so it can be appended to the
// /media URL prefix directly.
func SaveImage(mediaRoot, subdir string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageBytes))
	if err != nil {
		return "", err
	}

	ext, err := sniffImage(data)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(mediaRoot, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", err
	}
	return subdir + "/" + name, nil
}

// sniffImage decodes the image header and returns the file extension for
// the detected format.
func sniffImage(data []byte) (string, error) {
	if _, err := jpeg.DecodeConfig(bytes.NewReader(data)); err == nil {
		return ".jpg", nil
	}
	if _, err := png.DecodeConfig(bytes.NewReader(data)); err == nil {
		return ".png", nil
	}
	return "", ErrNotAnImage
}
