package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/recognizer"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <name> [image-path]",
	Short: "Enroll face samples for a person",
	Long: `Enroll one or more face images for a person. The strongest face found
in each image is cropped, encoded, and stored as a training sample.

Example:
  face-attendance enroll "Jane Doe" photo.jpg
  face-attendance enroll "Jane Doe" --dir /path/to/janes-photos`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
	enrollCmd.Flags().String("dir", "", "Enroll every image in a directory")
}

// collectImagePaths lists the enrollable images directly inside dir.
func collectImagePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot access folder %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png", ".gif", ".bmp":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}

func enrollOne(system *recognizer.System, name, path string) error {
	img, err := recognizer.DecodeImageFile(path)
	if err != nil {
		return err
	}
	return system.Enroll(name, img)
}

func runEnroll(cmd *cobra.Command, args []string) error {
	name := args[0]
	dir := mustGetString(cmd, "dir")

	if dir == "" && len(args) < 2 {
		return fmt.Errorf("provide an image path or --dir")
	}

	cfg := config.Load()
	system, err := recognizer.New(cfg)
	if err != nil {
		return fmt.Errorf("initializing recognition system: %w", err)
	}

	if dir == "" {
		if err := enrollOne(system, name, args[1]); err != nil {
			return fmt.Errorf("enrolling %s: %w", name, err)
		}
		fmt.Printf("Enrolled one face sample for %s\n", name)
		return nil
	}

	paths, err := collectImagePaths(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no images found in %s", dir)
	}

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("Enrolling"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	var failures []string
	enrolled := 0
	for _, path := range paths {
		if err := enrollOne(system, name, path); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", filepath.Base(path), err))
		} else {
			enrolled++
		}
		bar.Add(1)
	}
	fmt.Println()

	fmt.Printf("Enrolled %d/%d face samples for %s\n", enrolled, len(paths), name)
	if len(failures) > 0 {
		fmt.Printf("Skipped %d images:\n", len(failures))
		for _, failure := range failures {
			fmt.Printf("  %s\n", failure)
		}
	}
	return nil
}
