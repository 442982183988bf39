// Package prompt turns a writer's note, style and mood into the prompt text
// sent to a generation backend. The style and mood catalog and the prompt
// templates live in an embedded YAML document.
package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Style is a writing style offered to diary writers.
type Style struct {
	Name        string `yaml:"name"        json:"name"`
	Label       string `yaml:"label"       json:"label"`
	Description string `yaml:"description" json:"description"`
}

// Mood is an emotional tone that can be layered on top of a style.
type Mood struct {
	Name     string `yaml:"name"     json:"name"`
	Label    string `yaml:"label"    json:"label"`
	Keywords string `yaml:"keywords" json:"keywords"`
}

type catalog struct {
	DefaultStyle string  `yaml:"default_style"`
	Styles       []Style `yaml:"styles"`
	Moods        []Mood  `yaml:"moods"`
	Templates    struct {
		Diary      string `yaml:"diary"`
		Regenerate string `yaml:"regenerate"`
	} `yaml:"templates"`
}

// DiaryInput is the data for a first-time diary prompt.
type DiaryInput struct {
	Content string
	Style   string
	Mood    string
}

// RegenerateInput is the data for a prompt asking for a different take on a
// previously generated entry.
type RegenerateInput struct {
	OriginalContent string
	PreviousContent string
	Style           string
	Mood            string
}

type templateData struct {
	Content          string
	Previous         string
	StyleDescription string
	MoodKeywords     string
}

// Builder renders prompts from a catalog. It is immutable and safe for
// concurrent use.
type Builder struct {
	defaultStyle string
	styles       []Style
	moods        []Mood
	styleIndex   map[string]Style
	moodIndex    map[string]Mood
	diary        *template.Template
	regenerate   *template.Template
}

// NewBuilder returns a Builder over the embedded catalog.
func NewBuilder() (*Builder, error) {
	return Parse(defaultCatalog)
}

// Parse builds a Builder from a YAML catalog document.
func Parse(data []byte) (*Builder, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse prompt catalog: %w", err)
	}

	if len(c.Styles) == 0 {
		return nil, errors.New("prompt catalog defines no styles")
	}

	b := &Builder{
		defaultStyle: normalize(c.DefaultStyle),
		styles:       c.Styles,
		moods:        c.Moods,
		styleIndex:   make(map[string]Style, len(c.Styles)),
		moodIndex:    make(map[string]Mood, len(c.Moods)),
	}

	for _, s := range c.Styles {
		key := normalize(s.Name)
		if key == "" {
			return nil, errors.New("prompt catalog has a style without a name")
		}
		b.styleIndex[key] = s
	}
	for _, m := range c.Moods {
		key := normalize(m.Name)
		if key == "" {
			return nil, errors.New("prompt catalog has a mood without a name")
		}
		b.moodIndex[key] = m
	}

	if _, ok := b.styleIndex[b.defaultStyle]; !ok {
		return nil, fmt.Errorf("default style %q is not in the catalog", c.DefaultStyle)
	}

	var err error
	if b.diary, err = parseTemplate("diary", c.Templates.Diary); err != nil {
		return nil, err
	}
	if b.regenerate, err = parseTemplate("regenerate", c.Templates.Regenerate); err != nil {
		return nil, err
	}

	return b, nil
}

func parseTemplate(name, text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("prompt catalog has no %s template", name)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	return tmpl, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Styles returns the catalog's styles in catalog order.
func (b *Builder) Styles() []Style {
	out := make([]Style, len(b.styles))
	copy(out, b.styles)
	return out
}

// Moods returns the catalog's moods in catalog order.
func (b *Builder) Moods() []Mood {
	out := make([]Mood, len(b.moods))
	copy(out, b.moods)
	return out
}

// DefaultStyle returns the name of the style used for unknown or empty styles.
func (b *Builder) DefaultStyle() string {
	return b.defaultStyle
}

// ResolveStyle returns the style for name, falling back to the default style
// when name is empty or unknown.
func (b *Builder) ResolveStyle(name string) Style {
	if s, ok := b.styleIndex[normalize(name)]; ok {
		return s
	}
	return b.styleIndex[b.defaultStyle]
}

// ResolveMood returns the mood for name. The boolean is false for empty or
// unknown moods, which contribute nothing to the prompt.
func (b *Builder) ResolveMood(name string) (Mood, bool) {
	m, ok := b.moodIndex[normalize(name)]
	return m, ok
}

// Diary renders the prompt for a first-time diary entry.
func (b *Builder) Diary(in DiaryInput) (string, error) {
	return b.render(b.diary, b.data(in.Content, "", in.Style, in.Mood))
}

// Regenerate renders the prompt for a new take on a previous entry. The
// previous entry gets its own section, apart from the original note.
func (b *Builder) Regenerate(in RegenerateInput) (string, error) {
	return b.render(b.regenerate, b.data(in.OriginalContent, in.PreviousContent, in.Style, in.Mood))
}

func (b *Builder) data(content, previous, style, mood string) templateData {
	d := templateData{
		Content:          strings.TrimSpace(content),
		Previous:         strings.TrimSpace(previous),
		StyleDescription: b.ResolveStyle(style).Description,
	}
	if m, ok := b.ResolveMood(mood); ok {
		d.MoodKeywords = m.Keywords
	}
	return d
}

func (b *Builder) render(tmpl *template.Template, data templateData) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}
