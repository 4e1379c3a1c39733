package assets

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"wfc/common"
	"wfc/config"
	"wfc/fontface"
)

func newLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return zap.New(core), logs
}

func defaultOutput() *config.OutputConfig {
	return &config.OutputConfig{
		CSSDir:           "css/fonts",
		FontNameTemplate: "{{ .Name }}",
		Overwrite:        true,
		VerifyAssets:     true,
	}
}

func record(base, weight, style, segment string, format common.FontFormat) *fontface.Record {
	name, err := fontface.DisplayName("Roboto", weight, style)
	if err != nil {
		panic(err)
	}
	file := name + "."
	if segment != "" {
		file += segment + "."
	}
	return &fontface.Record{
		Family:  "Roboto",
		Weight:  weight,
		Style:   style,
		Segment: segment,
		URL:     base + "/" + file + format.Ext(),
		Source:  format,
		Name:    name,
	}
}

func woffPayload(format common.FontFormat) []byte {
	magic := "wOFF"
	if format == common.FontFormatWoff2 {
		magic = "wOF2"
	}
	return append([]byte(magic+"\x00\x01\x00\x00"), make([]byte, 64)...)
}

func eotPayload() []byte {
	data := make([]byte, 128)
	data[0] = 0x80
	copy(data[eotMagicOffset:], eotMagic)
	return data
}

const svgPayload = `<?xml version="1.0" standalone="no"?>
<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd" >
<svg xmlns="http://www.w3.org/2000/svg">
<defs>
<font id="Roboto" horiz-adv-x="1164">
<font-face font-family="Roboto" units-per-em="2048"/>
<glyph unicode="A" horiz-adv-x="1360" d="M0 0z"/>
</font>
</defs>
</svg>`
