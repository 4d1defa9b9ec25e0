package media

import (
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for image.Decode
	_ "image/png"
	"io"
	"log"
	"math"
	"strconv"

	"github.com/disintegration/imaging"
)

const (
	PortraitJpegQuality   = 90
	PortraitFileExtension = ".jpg"
)

// Processor normalizes uploaded enrollment portraits. It relies on a
// Store implementation for saving the results.
type Processor struct {
	store Store
}

func NewProcessor(store Store) *Processor {
	return &Processor{store: store}
}

// ProcessPortrait decodes an uploaded portrait, shrinks it so the
// longest side is at most maxSize, and saves it as
// portraits/<tenant>/<REGID>.jpg. Returns the relative path.
func (p *Processor) ProcessPortrait(fileData io.Reader, tenantID uint, regID string, maxSize int) (string, error) {
	img, format, err := image.Decode(fileData)
	if err != nil {
		return "", fmt.Errorf("failed to decode uploaded portrait: %w", err)
	}
	log.Printf("processor: Decoded uploaded portrait for %s (format: %s)", regID, format)

	origBounds := img.Bounds()
	origWidth := origBounds.Dx()
	origHeight := origBounds.Dy()
	if origWidth <= 0 || origHeight <= 0 {
		return "", fmt.Errorf("invalid portrait dimensions: %dx%d", origWidth, origHeight)
	}

	var newWidth, newHeight int
	if origWidth > origHeight {
		if origWidth <= maxSize {
			newWidth, newHeight = origWidth, origHeight
		} else {
			newWidth = maxSize
			newHeight = int(math.Round(float64(origHeight) * (float64(maxSize) / float64(origWidth))))
		}
	} else {
		if origHeight <= maxSize {
			newWidth, newHeight = origWidth, origHeight
		} else {
			newHeight = maxSize
			newWidth = int(math.Round(float64(origWidth) * (float64(maxSize) / float64(origHeight))))
		}
	}
	newWidth = max(1, newWidth)
	newHeight = max(1, newHeight)

	processedImg := imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)

	reader, writer := io.Pipe()
	go func() {
		defer writer.Close()
		err := imaging.Encode(writer, processedImg, imaging.JPEG, imaging.JPEGQuality(PortraitJpegQuality))
		if err != nil {
			log.Printf("processor: Failed to encode portrait: %v", err)
			writer.CloseWithError(fmt.Errorf("portrait encoding failed: %w", err))
		}
	}()

	targetFilename := regID + PortraitFileExtension
	tenantDir := strconv.FormatUint(uint64(tenantID), 10)

	savedRelPath, err := p.store.Save(AssetTypePortrait, tenantDir, targetFilename, reader)
	if err != nil {
		return "", fmt.Errorf("failed to save portrait via store: %w", err)
	}

	log.Printf("processor: Processed and saved portrait for %s to %s", regID, savedRelPath)
	return savedRelPath, nil
}
