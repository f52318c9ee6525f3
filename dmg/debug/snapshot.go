// Package debug holds developer-facing helpers that sit outside the core:
// frame snapshots and the instruction trace.
package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/valerio/go-dmg/dmg/video"
)

// FrameImage converts a frame buffer into an RGBA image.
func FrameImage(frame *video.FrameBuffer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, video.FramebufferWidth, video.FramebufferHeight))
	for i, pixel := range frame.ToSlice() {
		img.SetRGBA(i%video.FramebufferWidth, i/video.FramebufferWidth, argbToRGBA(pixel))
	}
	return img
}

func argbToRGBA(pixel uint32) color.RGBA {
	return color.RGBA{
		R: uint8(pixel >> 16),
		G: uint8(pixel >> 8),
		B: uint8(pixel),
		A: uint8(pixel >> 24),
	}
}

// EncodeFramePNG writes the frame as a PNG image to w.
func EncodeFramePNG(w io.Writer, frame *video.FrameBuffer) error {
	if err := png.Encode(w, FrameImage(frame)); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// SaveFramePNG writes the frame to path.
func SaveFramePNG(frame *video.FrameBuffer, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}

	if err := EncodeFramePNG(file, frame); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// SaveFramePNGToDir saves the frame as <baseName>_<timestamp>.png inside
// directory, or the working directory when directory is empty.
func SaveFramePNGToDir(frame *video.FrameBuffer, baseName, directory string) (string, error) {
	if frame == nil {
		return "", fmt.Errorf("no frame to save")
	}

	outputDir := directory
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		outputDir = cwd
	}

	timestamp := time.Now().Format("20060102_150405.000")
	path := filepath.Join(outputDir, fmt.Sprintf("%s_%s.png", baseName, timestamp))
	if err := SaveFramePNG(frame, path); err != nil {
		return "", err
	}

	slog.Info("Snapshot saved", "path", path, "size", fmt.Sprintf("%dx%d", video.FramebufferWidth, video.FramebufferHeight))
	return path, nil
}
