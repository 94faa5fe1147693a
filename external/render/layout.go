package render

import (
	_ "embed"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/foxseedlab/adhan/internal/prayer"
	"gopkg.in/yaml.v3"
)

//go:embed layout.yaml
var defaultLayoutYAML []byte

const calendarField = "calendar"

type field struct {
	X    int     `yaml:"x"`
	Y    int     `yaml:"y"`
	Size float64 `yaml:"size"`
}

type layout struct {
	Width           int              `yaml:"width"`
	Height          int              `yaml:"height"`
	BackgroundColor string           `yaml:"background_color"`
	TextColor       string           `yaml:"text_color"`
	Fields          map[string]field `yaml:"fields"`
}

func parseLayout(data []byte) (*layout, error) {
	var l layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse card layout: %w", err)
	}
	if l.Width <= 0 || l.Height <= 0 {
		return nil, fmt.Errorf("card layout has invalid size %dx%d", l.Width, l.Height)
	}
	for _, name := range prayer.Names {
		if _, ok := l.Fields[string(name)]; !ok {
			return nil, fmt.Errorf("card layout is missing field %q", name)
		}
	}
	if _, ok := l.Fields[calendarField]; !ok {
		return nil, fmt.Errorf("card layout is missing field %q", calendarField)
	}
	for name, f := range l.Fields {
		if f.Size <= 0 {
			return nil, fmt.Errorf("card layout field %q has invalid size %v", name, f.Size)
		}
	}
	return &l, nil
}

// parseHexColor accepts #rrggbb.
func parseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
