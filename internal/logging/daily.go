package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	dailyPrefix = "signout_log_"
	dailySuffix = ".log"
)

// DailyFileName returns the log file name used for the day of t.
func DailyFileName(t time.Time) string {
	return dailyPrefix + t.Format("2006-01-02") + dailySuffix
}

// OpenDailyFile opens (appending) the log file for the day of now inside dir,
// creating dir when needed.
func OpenDailyFile(dir string, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, DailyFileName(now))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// ListFiles returns the names of the daily log files in dir, oldest first.
// A missing directory yields an empty list.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isDailyLog(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// CleanupOld removes daily log files in dir whose modification time is older
// than now minus keep. It returns the names of the removed files; failures to
// remove individual files are joined into the returned error.
func CleanupOld(dir string, keep time.Duration, now time.Time) ([]string, error) {
	names, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}

	cutoff := now.Add(-keep)
	var (
		removed []string
		errs    []error
	)
	for _, name := range names {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, name)
	}
	return removed, errors.Join(errs...)
}

func isDailyLog(name string) bool {
	return strings.HasPrefix(name, dailyPrefix) && strings.HasSuffix(name, dailySuffix)
}
