package assets

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/beevik/etree"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/net/html/charset"

	"wfc/common"
)

// ErrBadPayload is returned for downloaded content which could not possibly
// be a font resource.
var ErrBadPayload = errors.New("unexpected payload")

// EOT header keeps magic number 0x504C (little endian) at offset 34.
const (
	eotMagicOffset = 34
	eotMagic       = "LP"
)

// Validator checks downloaded font resources. Only payloads which are
// obviously wrong (empty or error pages) are rejected, everything else
// unexpected is reported.
type Validator struct {
	family string
	log    *zap.Logger
}

// NewValidator creates validator for resources of a particular family.
func NewValidator(family string, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{family: family, log: log.Named("validator")}
}

// Check inspects data downloaded for format.
func (v *Validator) Check(name string, format common.FontFormat, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%s: empty content: %w", name, ErrBadPayload)
	}
	if ct := http.DetectContentType(data); strings.HasPrefix(ct, "text/html") {
		return fmt.Errorf("%s: got %s instead of font: %w", name, ct, ErrBadPayload)
	}

	var problem string
	switch format {
	case common.FontFormatEot:
		problem = checkEOT(data)
	case common.FontFormatWoff, common.FontFormatWoff2:
		if !filetype.Is(data, format.Ext()) {
			problem = "no " + format.String() + " signature"
		}
	case common.FontFormatTtf:
		problem = v.checkSFNT(name, data)
	case common.FontFormatSvg:
		problem = v.checkSVG(data)
	default:
		return fmt.Errorf("%s: unknown font format %d", name, format)
	}

	if problem != "" {
		v.log.Warn("Suspicious font resource", zap.String("file", name), zap.Stringer("format", format), zap.String("problem", problem))
	}
	return nil
}

func checkEOT(data []byte) string {
	if len(data) < eotMagicOffset+len(eotMagic) {
		return "too short for EOT header"
	}
	if string(data[eotMagicOffset:eotMagicOffset+len(eotMagic)]) != eotMagic {
		return "no EOT magic number"
	}
	return ""
}

func (v *Validator) checkSFNT(name string, data []byte) string {
	if !filetype.Is(data, "ttf") && !filetype.Is(data, "otf") {
		return "no sfnt signature"
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return "unable to parse sfnt: " + err.Error()
	}
	full, err := f.Name(nil, sfnt.NameIDFull)
	if err != nil {
		v.log.Debug("Font has no full name", zap.String("file", name), zap.Error(err))
		return ""
	}
	v.log.Debug("Font parsed", zap.String("file", name), zap.String("full name", full), zap.Int("glyphs", f.NumGlyphs()))
	return ""
}

func (v *Validator) checkSVG(data []byte) string {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Permissive:    true,
	}
	if _, err := doc.ReadFrom(bytes.NewReader(data)); err != nil {
		return "unable to parse svg: " + err.Error()
	}
	root := doc.Root()
	if root == nil || root.Tag != "svg" {
		return "no svg root element"
	}
	font := doc.FindElement("//font")
	if font == nil {
		return "no font element"
	}
	if id := font.SelectAttrValue("id", ""); id != "" && !sameName(id, v.family) {
		return fmt.Sprintf("svg font id %q does not match family %q", id, v.family)
	}
	return ""
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.ReplaceAll(a, " ", ""), strings.ReplaceAll(b, " ", ""))
}
