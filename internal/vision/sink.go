package vision

import (
	"errors"
	"fmt"

	"github.com/goodtune/classwatch/internal/engagement"
	"gocv.io/x/gocv"
)

// VirtualCameraHint is shown when no virtual camera device is available.
const VirtualCameraHint = "On Linux, load v4l2loopback (modprobe v4l2loopback) or install OBS Studio's virtual camera"

// ErrVirtualCamera is returned when the virtual camera cannot be opened.
var ErrVirtualCamera = errors.New("could not start virtual camera")

// VirtualCamera republishes frames to a v4l2loopback device through a
// GStreamer pipeline, so conferencing apps can select it as a webcam.
type VirtualCamera struct {
	device string
	writer *gocv.VideoWriter
}

// OpenVirtualCamera opens device with the given geometry.
func OpenVirtualCamera(device string, width, height int, fps float64) (*VirtualCamera, error) {
	pipeline := fmt.Sprintf("appsrc ! videoconvert ! video/x-raw,format=YUY2 ! v4l2sink device=%s sync=false", device)

	writer, err := gocv.VideoWriterFileWithAPI(pipeline, gocv.VideoCaptureGstreamer, "MJPG", fps, width, height, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrVirtualCamera, device, err)
	}
	if !writer.IsOpened() {
		_ = writer.Close()
		return nil, fmt.Errorf("%w: %s", ErrVirtualCamera, device)
	}

	return &VirtualCamera{device: device, writer: writer}, nil
}

// Device returns the loopback device path.
func (v *VirtualCamera) Device() string {
	return v.device
}

// Write sends frame to the virtual camera.
func (v *VirtualCamera) Write(f engagement.Frame) error {
	frame, err := asFrame(f)
	if err != nil {
		return err
	}
	return v.writer.Write(frame.Color)
}

// Close releases the device.
func (v *VirtualCamera) Close() error {
	return v.writer.Close()
}
