package basemap

import (
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/woozymasta/wpcmap/internal/config"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
)

// webpQuality is the lossy WEBP quality used for figures.
const webpQuality = 85

// Encode writes the figure in the given format: webp, png or svg.
func (m *Map) Encode(w io.Writer, format string) error {
	switch format {
	case config.FormatWebP:
		return webp.Encode(w, m.Render(), &webp.Options{Lossless: false, Quality: webpQuality})
	case config.FormatPNG:
		return png.Encode(w, m.Render())
	case config.FormatSVG:
		doc, err := m.RenderSVG()
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, doc)
		return err
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// Save encodes the figure into path, creating parent directories.
func (m *Map) Save(path, format string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
			if err == nil {
				err = closeErr
			}
		}
	}()

	if err := m.Encode(f, format); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	return nil
}
