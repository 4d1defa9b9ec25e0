package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"net/http"
	"time"

	"gocv.io/x/gocv"
	"gorm.io/gorm"

	"github.com/facekiosk/attendancebackend/attendance"
	"github.com/facekiosk/attendancebackend/media"
	"github.com/facekiosk/attendancebackend/repository"
	"github.com/facekiosk/attendancebackend/workers"
)

const mjpegBoundary = "frame"

// MJPEGContentType is the content type for the scan stream response
const MJPEGContentType = "multipart/x-mixed-replace; boundary=" + mjpegBoundary

var boxColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}

// ScanService runs duration-bounded kiosk scan sessions: it reads
// camera frames, recognizes enrolled faces, and hands recognition
// events to the attendance worker pool. Frame capture never waits on
// the database; recording happens on the workers.
type ScanService struct {
	camera       *media.Camera
	detector     *media.DNNFaceDetector
	recognizer   *media.FaceRecognitionModel
	encodings    *media.EncodingStore
	processor    *workers.AttendanceProcessor
	employeeRepo repository.EmployeeRepositoryInterface

	similarityThreshold float64
	scanDuration        time.Duration
}

func NewScanService(
	camera *media.Camera,
	detector *media.DNNFaceDetector,
	recognizer *media.FaceRecognitionModel,
	encodings *media.EncodingStore,
	processor *workers.AttendanceProcessor,
	employeeRepo repository.EmployeeRepositoryInterface,
	similarityThreshold float64,
	scanDuration time.Duration,
) *ScanService {
	return &ScanService{
		camera:              camera,
		detector:            detector,
		recognizer:          recognizer,
		encodings:           encodings,
		processor:           processor,
		employeeRepo:        employeeRepo,
		similarityThreshold: similarityThreshold,
		scanDuration:        scanDuration,
	}
}

// StreamScan runs one scan session for a tenant, writing an MJPEG
// stream of annotated frames to w. The session ends when the configured
// duration elapses or the client goes away.
func (s *ScanService) StreamScan(ctx context.Context, w io.Writer, tenantID uint) error {
	if s.camera == nil {
		return fmt.Errorf("no camera available for scan")
	}

	flusher, _ := w.(http.Flusher)
	deadline := time.Now().Add(s.scanDuration)

	log.Printf("scan: starting %s session for tenant %d", s.scanDuration, tenantID)
	frames := 0

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			log.Printf("scan: client disconnected after %d frames (tenant %d)", frames, tenantID)
			return nil
		default:
		}

		frame, err := s.camera.ReadFrame()
		if err != nil {
			return fmt.Errorf("scan aborted: %w", err)
		}

		s.recognizeFrame(tenantID, frame)

		jpeg, err := media.EncodeFrameJPEG(frame)
		frame.Close()
		if err != nil {
			log.Printf("scan: frame encode failed: %v", err)
			continue
		}

		if err := writeMJPEGPart(w, jpeg); err != nil {
			// broken pipe means the kiosk navigated away
			log.Printf("scan: stream write failed after %d frames (tenant %d): %v", frames, tenantID, err)
			return nil
		}
		if flusher != nil {
			flusher.Flush()
		}
		frames++
	}

	log.Printf("scan: session complete for tenant %d (%d frames)", tenantID, frames)
	return nil
}

// recognizeFrame detects faces in a frame, matches them against the
// tenant's enrolled encodings, queues recognition events, and draws
// boxes on the frame for the stream
func (s *ScanService) recognizeFrame(tenantID uint, frame gocv.Mat) {
	detections := s.detector.DetectFaces(frame)

	for _, det := range detections {
		rect := image.Rect(det.X, det.Y, det.X+det.W, det.Y+det.H)
		gocv.Rectangle(&frame, rect, boxColor, 2)

		if s.recognizer == nil || !s.recognizer.Enabled {
			continue
		}

		faceRegion := frame.Region(rect)
		embedding := s.recognizer.ExtractEmbedding(faceRegion)
		faceRegion.Close()
		if embedding == nil {
			continue
		}

		regID, similarity, ok := s.encodings.Match(tenantID, embedding, s.similarityThreshold)
		if !ok {
			continue
		}

		s.dispatchRecognition(tenantID, regID, similarity, &frame, rect)
	}
}

// dispatchRecognition labels the frame and queues the event for recording
func (s *ScanService) dispatchRecognition(tenantID uint, regID string, similarity float32,
	frame *gocv.Mat, rect image.Rectangle) {

	employee, err := s.employeeRepo.GetByRegID(tenantID, regID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// an encoding outlived its employee record; stale enrollment
			log.Printf("scan: matched %s (%.2f) but no employee record exists, skipping", regID, similarity)
		} else {
			log.Printf("scan: ERROR loading employee %s: %v", regID, err)
		}
		return
	}

	label := fmt.Sprintf("%s %s", employee.FirstName, employee.LastName)
	gocv.PutText(frame, label, image.Pt(rect.Min.X, rect.Min.Y-10),
		gocv.FontHersheySimplex, 0.7, boxColor, 2)

	queued := s.processor.QueueDetection(workers.DetectionJob{
		TenantID: tenantID,
		RegID:    regID,
		Snapshot: attendance.PersonSnapshot{
			FirstName:   employee.FirstName,
			LastName:    employee.LastName,
			Occupation:  employee.Occupation,
			RegularWage: employee.RegularWage,
		},
	})
	if queued {
		log.Printf("scan: recognized %s (similarity %.2f), queued for recording", regID, similarity)
	}
}

func writeMJPEGPart(w io.Writer, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n",
		mjpegBoundary, len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\r\n")
	return err
}
