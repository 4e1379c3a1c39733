package assets

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"wfc/common"
	"wfc/config"
	"wfc/fontface"
)

// Fetcher downloads single remote resource.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, format common.FontFormat) ([]byte, error)
}

// Retriever downloads font resources referenced by records into local
// directory and annotates records with the paths used.
type Retriever struct {
	fetcher   Fetcher
	namer     *Namer
	validator *Validator
	dir       string
	overwrite bool
	log       *zap.Logger

	// file name -> remote url it was produced from
	names map[string]string
}

// NewRetriever creates retriever storing files for family under dir.
func NewRetriever(fetcher Fetcher, cfg *config.OutputConfig, dir, family string, log *zap.Logger) (*Retriever, error) {
	if log == nil {
		log = zap.NewNop()
	}
	namer, err := NewNamer(cfg)
	if err != nil {
		return nil, err
	}
	r := &Retriever{
		fetcher:   fetcher,
		namer:     namer,
		dir:       dir,
		overwrite: cfg.Overwrite,
		log:       log.Named("assets"),
		names:     make(map[string]string),
	}
	if cfg.VerifyAssets {
		r.validator = NewValidator(family, log)
	}
	return r, nil
}

// Retrieve stores single record resource and sets its LocalFile.
func (r *Retriever) Retrieve(ctx context.Context, rec *fontface.Record) error {
	name, err := r.namer.Name(rec)
	if err != nil {
		return err
	}
	dest := filepath.Join(r.dir, name)

	if url, ok := r.names[name]; ok {
		if url != rec.URL {
			return fmt.Errorf("file name collision: %s is used for %s and %s", name, url, rec.URL)
		}
		rec.LocalFile = dest
		return nil
	}
	r.names[name] = rec.URL

	if !r.overwrite {
		if _, err := os.Lstat(dest); err == nil {
			r.log.Debug("Keeping existing file", zap.String("file", dest))
			rec.LocalFile = dest
			return nil
		}
	}

	data, err := r.fetcher.Fetch(ctx, rec.URL, rec.Source)
	if err != nil {
		return fmt.Errorf("unable to download %s: %w", rec.URL, err)
	}
	if r.validator != nil {
		if err := r.validator.Check(name, rec.Source, data); err != nil {
			return err
		}
	}
	if err := WriteFile(dest, data, r.overwrite); err != nil && !errors.Is(err, ErrExists) {
		return fmt.Errorf("unable to store %s: %w", dest, err)
	}

	r.log.Debug("Font stored", zap.String("file", dest), zap.Stringer("format", rec.Source), zap.Int("bytes", len(data)))
	rec.LocalFile = dest
	return nil
}

// RetrieveAll stores resources sequentially in the order given, stopping at
// first failure. Returns number of records processed.
func (r *Retriever) RetrieveAll(ctx context.Context, recs iter.Seq[*fontface.Record]) (int, error) {
	var count int
	for rec := range recs {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if err := r.Retrieve(ctx, rec); err != nil {
			return count, err
		}
		count++
	}
	r.log.Info("Fonts retrieved", zap.Int("files", count), zap.String("dir", r.dir))
	return count, nil
}
