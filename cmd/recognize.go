package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/recognizer"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize <image-path>",
	Short: "Recognize faces in an image",
	Long: `Recognize every face in an image against the enrolled gallery.

With --mark, each recognized person is also marked present for today.
The first mark of the day wins; repeats are reported but not recorded.

Example:
  face-attendance recognize frame.jpg
  face-attendance recognize --mark frame.jpg
  face-attendance recognize --threshold 80 frame.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)
	recognizeCmd.Flags().Bool("mark", false, "Mark recognized people present for today")
	recognizeCmd.Flags().Float64("threshold", 0, "Override the acceptance threshold")
}

func runRecognize(cmd *cobra.Command, args []string) error {
	mark := mustGetBool(cmd, "mark")
	threshold := mustGetFloat64(cmd, "threshold")

	cfg := config.Load()
	system, err := recognizer.New(cfg)
	if err != nil {
		return fmt.Errorf("initializing recognition system: %w", err)
	}

	if err := system.LoadKnownFaces(); err != nil {
		return fmt.Errorf("loading known faces: %w", err)
	}

	img, err := recognizer.DecodeImageFile(args[0])
	if err != nil {
		return err
	}

	if threshold <= 0 {
		threshold = system.Threshold()
	}

	detections := system.RecognizeWithThreshold(img, threshold)
	if len(detections) == 0 {
		fmt.Println("No faces found")
		return nil
	}

	fmt.Printf("Found %d face(s):\n", len(detections))
	for _, det := range detections {
		if det.Match.Known {
			fmt.Printf("  %s  %s (confidence %.0f%%, distance %.1f)\n",
				det.Box, det.Match.Name, det.Match.Confidence*100, det.Match.Distance)
		} else {
			fmt.Printf("  %s  unknown (distance %.1f)\n", det.Box, det.Match.Distance)
		}

		if mark && det.Match.Known {
			result := system.MarkAttendance(det.Match.Name)
			if result.Accepted {
				fmt.Printf("    marked present at %s\n", result.Time)
			} else if result.ExistingTime != "" {
				fmt.Printf("    already marked at %s\n", result.ExistingTime)
			} else {
				fmt.Printf("    mark failed, see log\n")
			}
		}
	}
	return nil
}
