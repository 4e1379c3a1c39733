// Package crawl implements the crawl command: it mirrors font family from
// the provider and produces self-hosted stylesheet for it.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"wfc/assets"
	"wfc/common"
	"wfc/config"
	"wfc/css"
	"wfc/fontface"
	"wfc/provider"
	"wfc/state"
	"wfc/utils/debug"
)

// ErrNoFamily is returned when font family was not specified.
var ErrNoFamily = errors.New("no font family has been specified")

// job describes single crawl after command line and configuration were
// merged.
type job struct {
	family   string
	selector provider.Selector
	fontsDir string
	out      config.OutputConfig
}

func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Named("crawl")

	family := norm.NFC.String(strings.TrimSpace(cmd.Args().Get(0)))
	if len(family) == 0 {
		return ErrNoFamily
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Mailformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	sel, err := provider.ParseSelector(cmd.String("weights"))
	if err != nil {
		return err
	}

	j := &job{family: family, selector: sel, out: env.Cfg.Output}
	if dir := cmd.String("fonts-dir"); len(dir) > 0 {
		j.out.FontsDir = dir
	}
	if dir := cmd.String("css-dir"); len(dir) > 0 {
		j.out.CSSDir = dir
	}
	if prefix := cmd.String("url-prefix"); len(prefix) > 0 {
		j.out.URLPrefix = prefix
	}
	j.fontsDir = j.out.FontsDir
	if len(j.fontsDir) == 0 {
		j.fontsDir = filepath.Join("fonts", config.CleanFileName(family))
	}

	log.Info("Crawling starting", zap.String("family", family), zap.Stringer("weights", sel),
		zap.String("fonts", j.fontsDir), zap.String("css", j.out.CSSDir))
	defer func(start time.Time) {
		log.Info("Crawling completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	_, err = process(ctx, env, j, log)
	return err
}

// process runs sequential pipeline: provider stylesheets for all formats,
// parsing, consolidation, retrieval of font files and final stylesheet
// generation. Returns path to the stylesheet produced.
func process(ctx context.Context, env *state.LocalEnv, j *job, log *zap.Logger) (string, error) {
	client, err := provider.NewClient(&env.Cfg.Provider, log)
	if err != nil {
		return "", err
	}

	sets := make([][]*fontface.Record, 0, len(common.FontFormatValues()))
	for _, format := range common.FontFormatValues() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		recs, err := collect(ctx, env, client, j, format, log)
		if err != nil {
			return "", err
		}
		sets = append(sets, recs)
	}

	buckets := fontface.Consolidate(sets...)
	if buckets.Len() == 0 {
		return "", fmt.Errorf("provider has no font faces for %q", j.family)
	}
	log.Debug("Records consolidated", zap.Int("rules", buckets.Len()))

	retriever, err := assets.NewRetriever(client, &j.out, j.fontsDir, j.family, log)
	if err != nil {
		return "", err
	}
	env.Rpt.Store("fonts", j.fontsDir)
	if _, err := retriever.RetrieveAll(ctx, buckets.Records()); err != nil {
		return "", err
	}
	env.Rpt.StoreData("rules.txt", []byte(dumpRules(buckets)))

	text, err := fontface.NewSerializer(j.family, j.out.URLPrefix).Serialize(buckets)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(j.out.CSSDir, config.CleanFileName(j.family)+".css")
	if err := verify(text, dest, buckets, j.family, log); err != nil {
		return "", err
	}
	if err := assets.WriteFile(dest, []byte(text), j.out.Overwrite); err != nil {
		return "", fmt.Errorf("unable to write stylesheet: %w", err)
	}
	if err := env.Rpt.StoreCopy("result/"+filepath.Base(dest), dest); err != nil {
		log.Warn("Unable to store stylesheet in report", zap.Error(err))
	}

	log.Info("Stylesheet created", zap.String("file", dest), zap.Int("rules", buckets.Len()))
	return dest, nil
}

// collect requests provider stylesheet for a single format and parses it.
func collect(ctx context.Context, env *state.LocalEnv, client *provider.Client, j *job, format common.FontFormat, log *zap.Logger) ([]*fontface.Record, error) {
	text, err := client.Stylesheet(ctx, j.family, j.selector, format)
	if err != nil {
		return nil, fmt.Errorf("unable to get %s stylesheet: %w", format, err)
	}
	env.Rpt.StoreData(fmt.Sprintf("provider/%s.%s.css", config.CleanFileName(j.family), format), []byte(text))

	parser, err := fontface.NewParser(format, j.family, log)
	if err != nil {
		return nil, err
	}
	recs, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	log.Debug("Stylesheet parsed", zap.Stringer("format", format), zap.Int("records", len(recs)))
	return recs, nil
}

// verify reads generated stylesheet back and makes sure it has a rule for
// every bucket, in bucket order, with matching segment label and range.
func verify(text, source string, buckets *fontface.Buckets, family string, log *zap.Logger) error {
	sheet := css.NewParser(log).Parse([]byte(text), source)
	for _, w := range sheet.Warnings {
		log.Warn("Generated stylesheet", zap.String("problem", w))
	}
	if len(sheet.FontFaces) != buckets.Len() {
		return fmt.Errorf("generated stylesheet has %d font faces, expected %d", len(sheet.FontFaces), buckets.Len())
	}

	var i int
	for rule := range buckets.All() {
		ff := sheet.FontFaces[i]
		if ff.Family != family {
			return fmt.Errorf("generated font face %d has family %q, expected %q", i, ff.Family, family)
		}
		if len(ff.URLs()) == 0 {
			return fmt.Errorf("generated font face %d has no sources", i)
		}
		if ff.Label != rule.Segment {
			return fmt.Errorf("generated font face %d is labeled %q, expected %q", i, ff.Label, rule.Segment)
		}
		if compact(ff.UnicodeRange) != compact(rule.UnicodeRange) {
			return fmt.Errorf("generated font face %d has unicode range %q, expected %q", i, ff.UnicodeRange, rule.UnicodeRange)
		}
		i++
	}
	return nil
}

// compact drops all white space so provider and generated range lists
// compare equal regardless of formatting.
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// dumpRules describes consolidated rules for debug report.
func dumpRules(buckets *fontface.Buckets) string {
	tw := debug.NewTreeWriter()
	for rule := range buckets.All() {
		tw.Line(0, "rule %s", rule.Key)
		tw.TextBlock(1, "unicode-range", rule.UnicodeRange)
		tw.List(1, "local", rule.LocalNames)
		members := make(map[string]string, len(rule.Members))
		for i, m := range rule.Members {
			members[fmt.Sprintf("%s-%d", m.Source, i)] = m.URL + " -> " + m.LocalFile
		}
		tw.Fields(1, "members", members)
	}
	return tw.String()
}
