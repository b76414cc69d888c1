package imageprocessor

import (
	"fmt"

	"visualgate/logging"

	"github.com/barasher/go-exiftool"
)

// ImageMetadata holds the subset of EXIF tags recorded alongside reports.
type ImageMetadata struct {
	Path     string `json:"path"`
	FileType string `json:"file_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Software string `json:"software,omitempty"`
}

// Metadata extracts basic image metadata via exiftool. Metadata only enriches
// the report; callers treat a failure here as non-fatal.
func Metadata(path string) (*ImageMetadata, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		logging.LogWarning("Failed to initialize exiftool: %v", err)
		return nil, err
	}
	defer et.Close()

	fileInfos := et.ExtractMetadata(path)
	if len(fileInfos) == 0 {
		return nil, fmt.Errorf("no metadata extracted from %s", path)
	}

	fileInfo := fileInfos[0]
	if fileInfo.Err != nil {
		logging.LogWarning("Error extracting metadata from %s: %v", path, fileInfo.Err)
		return nil, fileInfo.Err
	}

	meta := &ImageMetadata{Path: path}
	if v, err := fileInfo.GetString("FileType"); err == nil {
		meta.FileType = v
	}
	if v, err := fileInfo.GetInt("ImageWidth"); err == nil {
		meta.Width = int(v)
	}
	if v, err := fileInfo.GetInt("ImageHeight"); err == nil {
		meta.Height = int(v)
	}
	if v, err := fileInfo.GetString("Software"); err == nil {
		meta.Software = v
	}

	return meta, nil
}
