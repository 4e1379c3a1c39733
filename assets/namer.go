package assets

import (
	"fmt"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"

	"wfc/config"
	"wfc/fontface"
)

// NameValues are available to the font file name template.
type NameValues struct {
	Family     string
	Weight     string
	WeightName string
	Style      string
	Italic     bool
	Segment    string
	Format     string
	Ext        string
	// Name is the display name: family-WeightName[Italic]
	Name string
}

// Namer derives local file names for font records.
type Namer struct {
	tmpl          *template.Template
	transliterate bool
}

// NewNamer prepares font file naming according to configuration.
func NewNamer(cfg *config.OutputConfig) (*Namer, error) {
	text := cfg.FontNameTemplate
	if strings.TrimSpace(text) == "" {
		text = "{{ .Name }}"
	}
	tmpl, err := template.New(string(config.FontNameTemplateFieldName)).Funcs(sprig.FuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("unable to parse font name template: %w", err)
	}
	return &Namer{tmpl: tmpl, transliterate: cfg.FileNameTransliterate}, nil
}

// Name returns file name (no directory) for the record: expanded template,
// then segment label if any and extension.
func (n *Namer) Name(rec *fontface.Record) (string, error) {
	weightName, err := fontface.WeightName(rec.Weight)
	if err != nil {
		return "", err
	}
	values := NameValues{
		Family:     rec.Family,
		Weight:     rec.Weight,
		WeightName: weightName,
		Style:      rec.Style,
		Italic:     rec.Italic(),
		Segment:    rec.Segment,
		Format:     rec.Source.String(),
		Ext:        rec.Ext(),
		Name:       rec.Name,
	}

	var sb strings.Builder
	if err := n.tmpl.Execute(&sb, values); err != nil {
		return "", fmt.Errorf("unable to expand font name template: %w", err)
	}
	base := strings.TrimSpace(sb.String())
	if n.transliterate {
		base = slug.Make(base)
	}
	if base == "" {
		return "", fmt.Errorf("font name template produced empty name for %s", rec.Name)
	}

	name := base + "."
	if rec.Segment != "" {
		name += rec.Segment + "."
	}
	return config.CleanFileName(name + rec.Ext()), nil
}
