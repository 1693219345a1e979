package vision

import (
	"errors"
	"fmt"

	"github.com/goodtune/classwatch/internal/engagement"
	"gocv.io/x/gocv"
)

// DefaultFPS is used when the device does not report a frame rate.
const DefaultFPS = 20.0

// ErrFrameRead is returned when the camera yields no frame.
var ErrFrameRead = errors.New("can't receive frame from camera")

// Camera reads frames from a local capture device.
type Camera struct {
	device  int
	capture *gocv.VideoCapture
	frame   *Frame
	width   int
	height  int
	fps     float64
}

// OpenCamera opens capture device. A device that reports 0 fps is assumed to
// run at fallbackFPS (DefaultFPS when fallbackFPS is not positive).
func OpenCamera(device int, fallbackFPS float64) (*Camera, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("could not open webcam %d: %w", device, err)
	}
	if !capture.IsOpened() {
		_ = capture.Close()
		return nil, fmt.Errorf("could not open webcam %d", device)
	}

	if fallbackFPS <= 0 {
		fallbackFPS = DefaultFPS
	}
	fps := capture.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		fps = fallbackFPS
	}

	return &Camera{
		device:  device,
		capture: capture,
		frame:   NewFrame(),
		width:   int(capture.Get(gocv.VideoCaptureFrameWidth)),
		height:  int(capture.Get(gocv.VideoCaptureFrameHeight)),
		fps:     fps,
	}, nil
}

// Read captures the next frame. The returned frame is reused by the next
// call to Read.
func (c *Camera) Read() (engagement.Frame, error) {
	if ok := c.capture.Read(&c.frame.Color); !ok || c.frame.Empty() {
		return nil, ErrFrameRead
	}
	if err := c.frame.refreshGray(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrameRead, err)
	}
	return c.frame, nil
}

// Size returns the capture width and height.
func (c *Camera) Size() (int, int) {
	return c.width, c.height
}

// FPS returns the capture frame rate.
func (c *Camera) FPS() float64 {
	return c.fps
}

// Close releases the device.
func (c *Camera) Close() error {
	_ = c.frame.Close()
	return c.capture.Close()
}
