package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/foxseedlab/adhan/internal/prayer"
	"github.com/foxseedlab/adhan/internal/render"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type Options struct {
	BackgroundPath string
	FontPath       string
}

type CardRenderer struct {
	layout     *layout
	font       *opentype.Font
	background *image.RGBA
	textColor  color.Color

	// opentype faces keep per-face scratch buffers.
	mu sync.Mutex
}

func NewCardRenderer(opts Options) (render.CardRenderer, error) {
	l, err := parseLayout(defaultLayoutYAML)
	if err != nil {
		return nil, err
	}
	f, err := loadFont(opts.FontPath)
	if err != nil {
		return nil, err
	}
	textColor, err := parseHexColor(l.TextColor)
	if err != nil {
		return nil, err
	}
	bg, err := loadBackground(opts.BackgroundPath, l)
	if err != nil {
		return nil, err
	}
	return &CardRenderer{layout: l, font: f, background: bg, textColor: textColor}, nil
}

func loadFont(path string) (*opentype.Font, error) {
	data := gobold.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read card font: %w", err)
		}
		data = b
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse card font: %w", err)
	}
	return f, nil
}

// loadBackground scales the image at path to the canvas, or returns a solid
// canvas when path is empty or does not exist.
func loadBackground(path string, l *layout) (*image.RGBA, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, l.Width, l.Height))
	fill, err := parseHexColor(l.BackgroundColor)
	if err != nil {
		return nil, err
	}
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)
	if path == "" {
		return canvas, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("card background not found; using solid fill", "path", path)
		return canvas, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open card background: %w", err)
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode card background: %w", err)
	}
	draw.CatmullRom.Scale(canvas, canvas.Bounds(), src, src.Bounds(), draw.Over, nil)
	return canvas, nil
}

func (r *CardRenderer) Render(s prayer.Schedule) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dst := image.NewRGBA(r.background.Bounds())
	draw.Copy(dst, image.Point{}, r.background, r.background.Bounds(), draw.Src, nil)

	faces := make(map[float64]font.Face)
	defer func() {
		for _, face := range faces {
			_ = face.Close()
		}
	}()
	faceFor := func(size float64) (font.Face, error) {
		if face, ok := faces[size]; ok {
			return face, nil
		}
		face, err := opentype.NewFace(r.font, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			return nil, err
		}
		faces[size] = face
		return face, nil
	}

	for _, p := range s.Prayers() {
		if err := r.drawField(dst, faceFor, string(p.Name), p.Time); err != nil {
			return nil, err
		}
	}
	if s.CalendarLabel != "" {
		if err := r.drawField(dst, faceFor, calendarField, s.CalendarLabel); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode card: %w", err)
	}
	return buf.Bytes(), nil
}

// drawField centers text horizontally and vertically on the field's point.
func (r *CardRenderer) drawField(dst draw.Image, faceFor func(float64) (font.Face, error), name, text string) error {
	f := r.layout.Fields[name]
	face, err := faceFor(f.Size)
	if err != nil {
		return fmt.Errorf("card face for %s: %w", name, err)
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(r.textColor), Face: face}
	m := face.Metrics()
	width := d.MeasureString(text)
	d.Dot = fixed.Point26_6{
		X: fixed.I(f.X) - width/2,
		Y: fixed.I(f.Y) + (m.Ascent-m.Descent)/2,
	}
	d.DrawString(text)
	return nil
}
