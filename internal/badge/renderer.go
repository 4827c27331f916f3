// Package badge composites the employee ID-badge PNG. The layout is fixed:
// a 400x600 canvas with a blue header band, a circular profile photo, the
// employee's name and designation, and four decorative rings near the foot.
//
// A failed profile-photo load is logged and rendering continues with the
// photo area left blank; the badge is a best-effort artifact and its text
// content must survive a missing or unreachable photo.
package badge

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // profile photos may be JPEG
	_ "image/png"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// Canvas geometry and palette. Positions are absolute from the top-left.
const (
	canvasW = 400
	canvasH = 600

	headerH     = 100
	photoCX     = 200
	photoCY     = 180
	photoRadius = 80

	backgroundHex = "#f4f4f4"
	accentHex     = "#0057e7"
	nameHex       = "#333333"
	titleHex      = "#666666"

	textSize = 24 // bold 24pt for header, name, and designation
)

// Renderer draws badges into OutputDir and returns their relative access
// paths. Safe for concurrent use; every render writes a fresh uniquely
// named file.
type Renderer struct {
	// OutputDir is the directory badge PNGs are written to.
	OutputDir string
	// FontPath optionally points at a bold TTF face. When empty or
	// unreadable, the bundled Go Bold face is used instead.
	FontPath string

	// httpc fetches remote profile photos.
	httpc *http.Client
}

// NewRenderer constructs a Renderer writing into outputDir.
func NewRenderer(outputDir, fontPath string) *Renderer {
	return &Renderer{
		OutputDir: outputDir,
		FontPath:  fontPath,
		httpc:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Render composites a badge for name/designation with the photo at
// profileImageRef (a local path or an http(s) URL) and writes it to
// OutputDir as badge-<uuid>.png. It returns the badge's relative access
// path, e.g. "uploads/badge-1b9be034-….png".
//
// Photo load failures do not fail the render. Font loading, encoding, or
// file-write failures do.
func (r *Renderer) Render(ctx context.Context, name, designation, profileImageRef string) (string, error) {
	dc := gg.NewContext(canvasW, canvasH)

	// Background
	dc.SetHexColor(backgroundHex)
	dc.Clear()

	// Header band with centered title
	dc.SetHexColor(accentHex)
	dc.DrawRectangle(0, 0, canvasW, headerH)
	dc.Fill()

	face, err := r.fontFace(textSize)
	if err != nil {
		return "", fmt.Errorf("badge: load font: %w", err)
	}
	dc.SetFontFace(face)

	dc.SetHexColor("#ffffff")
	dc.DrawStringAnchored("EMPLOYEE BADGE", canvasW/2, 60, 0.5, 0)

	// Circular profile photo, scaled to fill the circle's bounding square.
	if img, err := r.loadImage(ctx, profileImageRef); err != nil {
		log.Error().Err(err).Str("ref", profileImageRef).Msg("badge: profile image load failed; rendering without photo")
	} else {
		b := img.Bounds()
		dc.Push()
		dc.DrawCircle(photoCX, photoCY, photoRadius)
		dc.Clip()
		dc.Translate(photoCX-photoRadius, photoCY-photoRadius)
		dc.Scale(2*photoRadius/float64(b.Dx()), 2*photoRadius/float64(b.Dy()))
		dc.DrawImage(img, 0, 0)
		dc.Pop()
		dc.ResetClip()
	}

	// Name and designation
	dc.SetHexColor(nameHex)
	dc.DrawStringAnchored(name, canvasW/2, 320, 0.5, 0)
	dc.SetHexColor(titleHex)
	dc.DrawStringAnchored(designation, canvasW/2, 360, 0.5, 0)

	// Concentric decorative rings near the foot
	dc.SetHexColor(accentHex)
	for i := 1; i <= 4; i++ {
		dc.DrawCircle(canvasW/2, canvasH-80, float64(i*10))
		dc.Stroke()
	}

	fileName := "badge-" + uuid.NewString() + ".png"
	if err := dc.SavePNG(filepath.Join(r.OutputDir, fileName)); err != nil {
		return "", fmt.Errorf("badge: write png: %w", err)
	}
	return path.Join("uploads", fileName), nil
}

// fontFace returns the configured TTF face when present, falling back to
// the bundled Go Bold face.
func (r *Renderer) fontFace(points float64) (font.Face, error) {
	data := gobold.TTF
	if r.FontPath != "" {
		if b, err := os.ReadFile(r.FontPath); err == nil {
			data = b
		} else {
			log.Warn().Err(err).Str("path", r.FontPath).Msg("badge: font file unreadable; using bundled face")
		}
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    points,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// loadImage fetches the profile photo from a local path or an http(s) URL.
func (r *Renderer) loadImage(ctx context.Context, ref string) (image.Image, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty image reference")
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return nil, err
		}
		resp, err := r.httpc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch %s: status %d", ref, resp.StatusCode)
		}
		img, _, err := image.Decode(resp.Body)
		return img, err
	}
	return gg.LoadImage(ref)
}
