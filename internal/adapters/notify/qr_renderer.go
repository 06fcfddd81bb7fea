package notify

import (
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
)

// PNGRenderer writes tracking QR codes as PNG files under a fixed directory.
type PNGRenderer struct {
	dir string
}

func NewPNGRenderer(dir string) *PNGRenderer {
	return &PNGRenderer{dir: dir}
}

// RenderTrackingQR encodes link into {dir}/{postID}.png and returns the path.
func (r *PNGRenderer) RenderTrackingQR(link, postID string) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("render qr: create dir: %w", err)
	}

	path := filepath.Join(r.dir, postID+".png")
	if err := qrcode.WriteFile(link, qrcode.Medium, 256, path); err != nil {
		return "", fmt.Errorf("render qr: %w", err)
	}

	return path, nil
}
