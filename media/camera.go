package media

import (
	"fmt"
	"log"
	"sync"

	"gocv.io/x/gocv"
)

// Camera wraps a gocv video capture device for the kiosk scan loop.
// Reads are serialized; OpenCV capture handles are not safe for
// concurrent access.
type Camera struct {
	mu      sync.Mutex
	capture *gocv.VideoCapture
	index   int
}

// OpenCamera opens the capture device at the given index
func OpenCamera(index int) (*Camera, error) {
	capture, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera device %d: %w", index, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("camera device %d did not open", index)
	}

	log.Printf("camera: opened device %d", index)
	return &Camera{capture: capture, index: index}, nil
}

// ReadFrame grabs the next frame into a freshly allocated Mat. The
// caller owns the returned Mat and must Close it.
func (c *Camera) ReadFrame() (gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	frame := gocv.NewMat()
	if ok := c.capture.Read(&frame); !ok || frame.Empty() {
		frame.Close()
		return gocv.Mat{}, fmt.Errorf("failed to read frame from camera device %d", c.index)
	}
	return frame, nil
}

// Close releases the capture device
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}
	err := c.capture.Close()
	c.capture = nil
	if err != nil {
		return fmt.Errorf("failed to close camera device %d: %w", c.index, err)
	}
	log.Printf("camera: closed device %d", c.index)
	return nil
}

// EncodeFrameJPEG encodes a frame as JPEG bytes for the MJPEG stream
func EncodeFrameJPEG(frame gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame as JPEG: %w", err)
	}
	defer buf.Close()

	// copy out; the native buffer is freed on Close
	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}
