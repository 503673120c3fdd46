package project

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"spbg/internal/diag"
)

// WriteFile writes data to path, replacing any existing file.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // generated sources are meant to be shared
		return diag.Wrap(diag.IOWriteFailed, path, err)
	}
	return nil
}

// WriteProtected writes data to path. An existing file is first renamed to
// <stem>_backup_<HH-MM-SS><ext> (with _<n> appended if that name is taken)
// so hand edits survive regeneration. It returns the backup path, empty when
// there was nothing to keep.
func WriteProtected(path string, data []byte, now func() time.Time) (string, error) {
	if now == nil {
		now = time.Now
	}
	var backup string
	if _, err := os.Lstat(path); err == nil {
		backup, err = backupName(path, now())
		if err != nil {
			return "", err
		}
		if err := os.Rename(path, backup); err != nil {
			return "", diag.Wrap(diag.IOWriteFailed, path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", diag.Wrap(diag.IOWriteFailed, path, err)
	}
	if err := WriteFile(path, data); err != nil {
		return backup, err
	}
	return backup, nil
}

func backupName(path string, at time.Time) (string, error) {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stamp := at.Format("15-04-05")
	candidate := filepath.Join(dir, stem+"_backup_"+stamp+ext)
	for n := 1; ; n++ {
		_, err := os.Lstat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", diag.Wrap(diag.IOWriteFailed, candidate, err)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_backup_%s_%d%s", stem, stamp, n, ext))
	}
}

// CopyFile copies src to dst, replacing dst. A missing src is a context
// error: the file is one the context directory must provide.
func CopyFile(src, dst string) error {
	// #nosec G304 -- src is a file inside the context directory
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return diag.Errorf(diag.CtxMissingFile, "%s not found", src)
		}
		return diag.Wrap(diag.IOCopyFailed, src, err)
	}
	defer in.Close()
	mode := os.FileMode(0o644)
	srcInfo, err := in.Stat()
	if err == nil {
		mode = srcInfo.Mode().Perm()
		if dstInfo, statErr := os.Stat(dst); statErr == nil && os.SameFile(srcInfo, dstInfo) {
			return diag.Errorf(diag.IOCopyFailed, "cannot copy %s onto itself", src)
		}
	}
	// #nosec G304 -- dst is inside the output directory
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return diag.Wrap(diag.IOCopyFailed, dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return diag.Wrap(diag.IOCopyFailed, dst, err)
	}
	if err := out.Close(); err != nil {
		return diag.Wrap(diag.IOCopyFailed, dst, err)
	}
	return nil
}
