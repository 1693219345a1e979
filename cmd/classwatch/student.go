package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodtune/classwatch/internal/config"
	"github.com/goodtune/classwatch/internal/engagement"
	"github.com/goodtune/classwatch/internal/reporter"
	"github.com/goodtune/classwatch/internal/student"
	"github.com/goodtune/classwatch/internal/vision"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	studentServerURL string
	studentNoPreview bool
)

var studentCmd = &cobra.Command{
	Use:   "student STUDENT_ID",
	Short: "Run the engagement classifier for one student",
	Long: `Read the webcam, classify the student as Engaged or Zoned Out, publish the
annotated video to a virtual camera and report the status to the aggregator.`,
	Example: `  classwatch student alice
  classwatch student --server-url http://10.0.0.5:5000 bob`,
	Args: cobra.ExactArgs(1),
	RunE: runStudent,
}

func init() {
	studentCmd.Flags().StringVar(&studentServerURL, "server-url", "", "Aggregator base URL (overrides client.server_url)")
	studentCmd.Flags().BoolVar(&studentNoPreview, "no-preview", false, "Do not open the local preview window")
	rootCmd.AddCommand(studentCmd)
}

func runStudent(cmd *cobra.Command, args []string) error {
	studentID := args[0]
	if studentID == "" {
		return errors.New("student id must not be empty")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if studentServerURL != "" {
		if err := config.ValidateServerURL(studentServerURL); err != nil {
			return fmt.Errorf("invalid --server-url: %w", err)
		}
		cfg.Client.ServerURL = studentServerURL
	}

	logger := setupLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", version).
		Str("student_id", studentID).
		Str("server_url", cfg.Client.ServerURL).
		Msg("Starting classwatch student client")

	// Load detection models
	faces, err := vision.LoadCascade(cfg.Detection.FaceCascade, cfg.Detection.Face)
	if err != nil {
		return fmt.Errorf("failed to load face model: %w", err)
	}
	defer faces.Close()

	eyes, err := vision.LoadCascade(cfg.Detection.EyeCascade, cfg.Detection.Eye)
	if err != nil {
		return fmt.Errorf("failed to load eye model: %w", err)
	}
	defer eyes.Close()

	// Open webcam
	camera, err := vision.OpenCamera(cfg.Client.CameraDevice, cfg.Client.FallbackFPS)
	if err != nil {
		return err
	}
	defer camera.Close()

	width, height := camera.Size()
	logger.Info().
		Int("width", width).
		Int("height", height).
		Float64("fps", camera.FPS()).
		Msg("Webcam opened")

	// Open virtual camera
	vcam, err := vision.OpenVirtualCamera(cfg.Client.VirtualCamera, width, height, camera.FPS())
	if err != nil {
		return fmt.Errorf("%w. %s", err, vision.VirtualCameraHint)
	}
	defer vcam.Close()

	logger.Info().Str("device", vcam.Device()).Msg("Virtual camera created, select it in your video conferencing app")

	// Reporter
	rep, err := reporter.New(cfg.Client.ServerURL,
		reporter.WithTimeout(parseDuration(cfg.Client.ReportTimeout, reporter.DefaultTimeout)),
		reporter.WithUserAgent("classwatch/"+version),
	)
	if err != nil {
		return err
	}

	classifier := engagement.NewClassifier(faces, eyes, engagement.Config{
		Threshold: parseDuration(cfg.Client.ZonedOutThreshold, engagement.DefaultThreshold),
	})
	schedule := reporter.NewSchedule(parseDuration(cfg.Client.ReportInterval, reporter.DefaultInterval), time.Now())
	loop := reporter.NewLoop(studentID, rep, schedule, logger)

	var viewer student.Viewer
	if cfg.Client.Preview && !studentNoPreview {
		preview := vision.NewPreview(logger)
		defer preview.Close()
		viewer = preview
		logger.Info().Msg("Press 'q' in the preview window to quit")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := student.NewRunner(student.Config{StudentID: studentID}, camera, classifier, loop, vision.Overlay{}, vcam, viewer, logger)
	if err := runner.Run(ctx); err != nil {
		return err
	}

	logger.Info().Msg("Student client stopped")
	return nil
}
