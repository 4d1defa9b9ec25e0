package media

import (
	"image"
	"log"
	"math"
	"os"

	"gocv.io/x/gocv"
)

// FaceRecognitionModel provides face embedding extraction for recognition
type FaceRecognitionModel struct {
	Net     gocv.Net
	Enabled bool

	// Configuration parameters
	InputSizeW  int
	InputSizeH  int
	ScaleFactor float64
}

// NewFaceRecognitionModel loads the embedding network used to match
// kiosk frames against enrolled portraits
func NewFaceRecognitionModel(modelPath string) *FaceRecognitionModel {
	if modelPath == "" {
		log.Println("recognition: model path is empty, disabling face recognition")
		return &FaceRecognitionModel{Enabled: false}
	}

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		log.Printf("recognition: ERROR - Model file does not exist: %s", modelPath)
		return &FaceRecognitionModel{Enabled: false}
	}

	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		log.Printf("recognition: ERROR - ReadNet returned an empty network. Check file path and integrity.")
		return &FaceRecognitionModel{Enabled: false}
	}

	log.Printf("recognition: successfully loaded embedding model from %s", modelPath)

	// Try to use CUDA if available
	cudaBackendErr := net.SetPreferableBackend(gocv.NetBackendCUDA)
	cudaTargetErr := net.SetPreferableTarget(gocv.NetTargetCUDA)

	if cudaBackendErr == nil && cudaTargetErr == nil {
		log.Println("recognition: Set backend/target to CUDA")
	} else {
		if cudaBackendErr != nil {
			log.Printf("recognition: CUDA Backend not available: %v. Using default backend.", cudaBackendErr)
		}
		if cudaTargetErr != nil {
			log.Printf("recognition: CUDA Target not available: %v. Using default target.", cudaTargetErr)
		}

		net.SetPreferableBackend(gocv.NetBackendDefault)
		net.SetPreferableTarget(gocv.NetTargetCPU)
		log.Println("recognition: Set backend/target to CPU (Default)")
	}

	return &FaceRecognitionModel{
		Net:         net,
		Enabled:     true,
		InputSizeW:  112,
		InputSizeH:  112,
		ScaleFactor: 1.0 / 255.0,
	}
}

func (f *FaceRecognitionModel) Close() {
	if f != nil && f.Enabled {
		f.Net.Close()
		log.Println("recognition: closed network")
		f.Enabled = false
	}
}

// ExtractEmbedding extracts an L2-normalized face embedding from a face region
func (f *FaceRecognitionModel) ExtractEmbedding(faceRegion gocv.Mat) []float32 {
	if f == nil || !f.Enabled || faceRegion.Empty() {
		return nil
	}

	processed := f.preprocessFace(faceRegion)
	if processed.Empty() {
		log.Printf("recognition: ERROR - preprocessFace returned empty matrix")
		return nil
	}
	defer processed.Close()

	blob := gocv.BlobFromImage(processed, f.ScaleFactor, image.Pt(f.InputSizeW, f.InputSizeH),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	f.Net.SetInput(blob, "")
	output := f.Net.Forward("")
	defer output.Close()

	embedding := f.extractEmbeddingVector(output)
	if len(embedding) == 0 {
		log.Printf("recognition: WARNING - empty embedding from %dx%d face region",
			faceRegion.Cols(), faceRegion.Rows())
		return nil
	}

	return normalizeEmbedding(embedding)
}

// preprocessFace prepares a face region for embedding extraction
func (f *FaceRecognitionModel) preprocessFace(faceRegion gocv.Mat) gocv.Mat {
	if faceRegion.Empty() {
		return gocv.Mat{}
	}

	// the embedding network expects RGB input
	var processed gocv.Mat
	if faceRegion.Channels() == 3 {
		processed = gocv.NewMat()
		gocv.CvtColor(faceRegion, &processed, gocv.ColorBGRToRGB)
	} else {
		processed = faceRegion.Clone()
	}

	aligned := gocv.NewMat()
	gocv.Resize(processed, &aligned, image.Pt(f.InputSizeW, f.InputSizeH), 0, 0, gocv.InterpolationLinear)
	processed.Close()

	normalized := gocv.NewMat()
	aligned.ConvertTo(&normalized, gocv.MatTypeCV32F)
	aligned.Close()

	return normalized
}

// extractEmbeddingVector flattens the model output into a float32 vector
func (f *FaceRecognitionModel) extractEmbeddingVector(output gocv.Mat) []float32 {
	sizes := output.Size()
	if len(sizes) == 0 {
		return nil
	}

	flattened := output.Reshape(1, 1)
	defer flattened.Close()

	embeddingSize := flattened.Cols()
	embedding := make([]float32, embeddingSize)

	for i := 0; i < embeddingSize; i++ {
		embedding[i] = flattened.GetFloatAt(0, i)
	}

	return embedding
}

// normalizeEmbedding normalizes the embedding vector to unit length
func normalizeEmbedding(embedding []float32) []float32 {
	var norm float32
	for _, val := range embedding {
		norm += val * val
	}
	norm = float32(math.Sqrt(float64(norm)))

	if norm == 0 {
		return embedding
	}

	normalized := make([]float32, len(embedding))
	for i, val := range embedding {
		normalized[i] = val / norm
	}

	return normalized
}

// CosineSimilarity calculates cosine similarity between two embeddings.
// Since embeddings are unit length, the dot product is the cosine.
func CosineSimilarity(embedding1, embedding2 []float32) float32 {
	if len(embedding1) != len(embedding2) || len(embedding1) == 0 {
		return 0.0
	}

	var dotProduct float32
	for i := 0; i < len(embedding1); i++ {
		dotProduct += embedding1[i] * embedding2[i]
	}

	return dotProduct
}
