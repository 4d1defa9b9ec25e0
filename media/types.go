// media/types.go
package media

import (
	"path/filepath"
	"strings"
)

type AssetType string

const (
	AssetTypePortrait AssetType = "portrait"
	AssetTypeEncoding AssetType = "encoding"
	AssetTypeUnknown  AssetType = "unknown"
)

// DetectionResult is one face box found in a frame
type DetectionResult struct {
	X          int
	Y          int
	W          int
	H          int
	Confidence float32
}

var supportedImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true,
}

// IsRasterImage checks if the filename has a supported portrait extension
func IsRasterImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return supportedImageExtensions[ext]
}
