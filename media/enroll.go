package media

import (
	"fmt"
	"image"
	"log"

	"gocv.io/x/gocv"
)

// EncodePortraitFile detects the most prominent face in an enrollment
// portrait and returns its embedding. Fails when the portrait contains
// no detectable face, so bad enrollments are caught at upload time
// rather than silently never matching at the kiosk.
func EncodePortraitFile(path string, detector *DNNFaceDetector, recognizer *FaceRecognitionModel) ([]float32, error) {
	if detector == nil || !detector.Enabled {
		return nil, fmt.Errorf("face detector is not available")
	}
	if recognizer == nil || !recognizer.Enabled {
		return nil, fmt.Errorf("face recognition model is not available")
	}

	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return nil, fmt.Errorf("failed to read portrait file: %s", path)
	}
	defer img.Close()

	detections := detector.DetectFaces(img)
	if len(detections) == 0 {
		return nil, fmt.Errorf("no face detected in portrait %s", path)
	}

	best := largestDetection(detections)
	log.Printf("enroll: using face at [%d,%d,%d,%d] (confidence %.2f) from %s",
		best.X, best.Y, best.W, best.H, best.Confidence, path)

	faceRegion := img.Region(image.Rect(best.X, best.Y, best.X+best.W, best.Y+best.H))
	defer faceRegion.Close()

	embedding := recognizer.ExtractEmbedding(faceRegion)
	if embedding == nil {
		return nil, fmt.Errorf("failed to extract embedding from portrait %s", path)
	}
	return embedding, nil
}

func largestDetection(detections []DetectionResult) DetectionResult {
	best := detections[0]
	for _, det := range detections[1:] {
		if det.W*det.H > best.W*best.H {
			best = det
		}
	}
	return best
}
