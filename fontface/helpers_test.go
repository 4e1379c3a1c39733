package fontface_test

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"wfc/common"
	"wfc/fontface"
)

const providerDir = "../testdata/provider"

func loadProvider(t *testing.T, family string, format common.FontFormat) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(providerDir, family+"."+format.String()+".css"))
	if err != nil {
		t.Fatalf("read provider stylesheet: %v", err)
	}
	return string(data)
}

func newLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func parse(t *testing.T, format common.FontFormat, family, text string) []*fontface.Record {
	t.Helper()
	p, err := fontface.NewParser(format, family, newLogger(t))
	if err != nil {
		t.Fatalf("NewParser(%s) error = %v", format, err)
	}
	recs, err := p.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%s) error = %v", format, err)
	}
	return recs
}

// parseRoboto parses all five provider stylesheets for Roboto 400,700italic
// in fetch order.
func parseRoboto(t *testing.T) [][]*fontface.Record {
	t.Helper()
	var sets [][]*fontface.Record
	for _, f := range common.FontFormatValues() {
		sets = append(sets, parse(t, f, "Roboto", loadProvider(t, "Roboto", f)))
	}
	return sets
}

// retrieveAll pretends every record was stored under dir.
func retrieveAll(b *fontface.Buckets, dir string) {
	for rec := range b.Records() {
		rec.LocalFile = filepath.Join(dir, rec.FileName())
	}
}
