package tray

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/bubblechat/bubblechat/internal/logging"
)

// DefaultIconCandidates are the asset locations tried in order.
func DefaultIconCandidates() []string {
	candidates := []string{}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".config", "bubblechat", "icon.png"),
			filepath.Join(home, ".local", "share", "bubblechat", "icon.png"),
		)
	}
	candidates = append(candidates,
		"/usr/share/bubblechat/icon.png",
		"/usr/local/share/bubblechat/icon.png",
	)
	return candidates
}

// ResolveIcon walks the candidate list and returns the first existing,
// non-empty image. When every candidate is absent or empty, a minimal
// solid placeholder is synthesized into cacheDir so the tray surface
// never goes without an icon. The second return names the source:
// "asset" or "placeholder".
func ResolveIcon(candidates []string, cacheDir string) (string, string) {
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() || info.Size() == 0 {
			continue
		}
		return candidate, "asset"
	}
	path, err := writePlaceholder(cacheDir)
	if err != nil {
		logging.Warn("placeholder icon: %v", err)
		return "", "placeholder"
	}
	return path, "placeholder"
}

// writePlaceholder renders a 16x16 solid square PNG.
func writePlaceholder(cacheDir string) (string, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(cacheDir, "icon-placeholder.png")
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return path, nil
	}

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	fill := color.RGBA{R: 0x5a, G: 0x56, B: 0xe0, A: 0xff}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, fill)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
