package imageprocessor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
)

// DecodeError reports an input that could not be interpreted as a raster image.
type DecodeError struct {
	Path   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode image %s: %s", e.Path, e.Reason)
}

// ImageLoader interface for loading different image formats
type ImageLoader interface {
	CanLoad(path string) bool
	LoadImage(path string) (gocv.Mat, error)
}

// ScreenshotLoader handles the raster formats UI capture tools produce
type ScreenshotLoader struct{}

// screenshotExts are the extensions accepted for references and screenshots
var screenshotExts = []string{".png", ".jpg", ".jpeg", ".bmp", ".webp", ".tif", ".tiff"}

func (l *ScreenshotLoader) CanLoad(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range screenshotExts {
		if ext == e {
			// Check extension and make sure file exists and is readable
			_, err := os.Stat(path)
			return err == nil
		}
	}
	return false
}

func (l *ScreenshotLoader) LoadImage(path string) (gocv.Mat, error) {
	// IMReadColor promotes grayscale to 3 channels and drops any alpha plane,
	// so every caller sees the same 8-bit BGR representation.
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return img, &DecodeError{Path: path, Reason: "unreadable or not a raster image"}
	}
	return img, nil
}

// ImageLoaderRegistry manages available image loaders
type ImageLoaderRegistry struct {
	loaders []ImageLoader
}

// NewImageLoaderRegistry creates a registry with the default loaders
func NewImageLoaderRegistry() *ImageLoaderRegistry {
	return &ImageLoaderRegistry{
		loaders: []ImageLoader{
			&ScreenshotLoader{},
		},
	}
}

// RegisterLoader adds a custom loader to the registry
func (r *ImageLoaderRegistry) RegisterLoader(loader ImageLoader) {
	r.loaders = append(r.loaders, loader)
}

// CanLoadFile checks if any registered loader can handle the given file
func (r *ImageLoaderRegistry) CanLoadFile(path string) bool {
	for _, loader := range r.loaders {
		if loader.CanLoad(path) {
			return true
		}
	}
	return false
}

// LoadImage tries to load an image using the appropriate loader
func (r *ImageLoaderRegistry) LoadImage(path string) (gocv.Mat, error) {
	for _, loader := range r.loaders {
		if loader.CanLoad(path) {
			return loader.LoadImage(path)
		}
	}
	return gocv.NewMat(), &DecodeError{Path: path, Reason: "no suitable loader for this file"}
}

// LoadImage loads an image as 8-bit BGR with error handling
func LoadImage(path string) (gocv.Mat, error) {
	registry := NewImageLoaderRegistry()
	return registry.LoadImage(path)
}
