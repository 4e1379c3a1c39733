package assets

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// ErrExists is returned when destination file is present and overwriting is
// not allowed.
var ErrExists = errors.New("destination already exists")

// WriteFile stores data under dest atomically: content goes to a temporary
// file in the destination directory which is renamed into place after it
// was synced. Destination directory is created when absent.
func WriteFile(dest string, data []byte, overwrite bool) (err error) {
	if !overwrite {
		if _, err := os.Lstat(dest); err == nil {
			return fmt.Errorf("%s: %w", dest, ErrExists)
		}
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("unable to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(tmp.Name()))
		}
	}()

	bw := bufio.NewWriter(tmp)
	if _, err := bw.Write(data); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err := bw.Flush(); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err := tmp.Sync(); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
