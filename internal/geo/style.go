package geo

import (
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"konservasi-platform/internal/efektivitas"
)

// CategoryStyle is the fill used for one effectiveness category
type CategoryStyle struct {
	Fill  string `yaml:"fill" json:"fill"`
	Label string `yaml:"label" json:"label"`
}

// Style configures how the area layer is drawn
type Style struct {
	FillOpacity float64                                `yaml:"fill_opacity" json:"fill_opacity"`
	LineColor   string                                 `yaml:"line_color" json:"line_color"`
	LineWidth   float64                                `yaml:"line_width" json:"line_width"`
	Center      [2]float64                             `yaml:"center" json:"center"`
	Zoom        float64                                `yaml:"zoom" json:"zoom"`
	Categories  map[efektivitas.Category]CategoryStyle `yaml:"categories" json:"categories"`
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var defaultFills = map[efektivitas.Category]string{
	efektivitas.NotAssessed:        "#9ca3af",
	efektivitas.Ineffective:        "#dc2626",
	efektivitas.PartiallyEffective: "#eab308",
	efektivitas.Effective:          "#16a34a",
}

// DefaultStyle is used when no style file is configured
func DefaultStyle() *Style {
	s := &Style{
		FillOpacity: 0.6,
		LineColor:   "#1f2937",
		LineWidth:   1,
		Center:      [2]float64{118.0, -2.5},
		Zoom:        4.5,
		Categories:  make(map[efektivitas.Category]CategoryStyle, len(defaultFills)),
	}
	for _, c := range efektivitas.Categories {
		s.Categories[c] = CategoryStyle{Fill: defaultFills[c], Label: c.Label()}
	}
	return s
}

// LoadStyle reads a YAML style file over the defaults. An empty path returns the defaults.
func LoadStyle(path string) (*Style, error) {
	style := DefaultStyle()
	if path == "" {
		return style, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read map style %s", path)
	}
	return ParseStyle(data)
}

// ParseStyle decodes YAML style data over the defaults
func ParseStyle(data []byte) (*Style, error) {
	style := DefaultStyle()
	defaults := style.Categories
	style.Categories = nil

	if err := yaml.Unmarshal(data, style); err != nil {
		return nil, eris.Wrap(err, "failed to parse map style")
	}

	merged := defaults
	for c, cs := range style.Categories {
		if !c.Valid() {
			return nil, eris.Errorf("unknown category %q in map style", c)
		}
		base := merged[c]
		if cs.Fill != "" {
			base.Fill = cs.Fill
		}
		if cs.Label != "" {
			base.Label = cs.Label
		}
		merged[c] = base
	}
	style.Categories = merged

	return style, style.Validate()
}

// Validate checks colours and numeric ranges
func (s *Style) Validate() error {
	if s.FillOpacity < 0 || s.FillOpacity > 1 {
		return eris.Errorf("fill_opacity must be between 0 and 1, got %v", s.FillOpacity)
	}
	if !hexColor.MatchString(s.LineColor) {
		return eris.Errorf("invalid line_color %q", s.LineColor)
	}
	for c, cs := range s.Categories {
		if !hexColor.MatchString(cs.Fill) {
			return eris.Errorf("invalid fill %q for %s", cs.Fill, c)
		}
	}
	return nil
}

// FillFor returns the fill colour of a category, falling back to NotAssessed
func (s *Style) FillFor(c efektivitas.Category) string {
	if cs, ok := s.Categories[c]; ok {
		return cs.Fill
	}
	return s.Categories[efektivitas.NotAssessed].Fill
}
