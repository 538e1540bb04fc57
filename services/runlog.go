package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	runLogPrefix  = "import_log_"
	runLogSuffix  = ".txt"
	runLogDateFmt = "2006-01-02"
)

// RunLog appends import messages to one plain-text file per day and
// prunes files older than the retention window when listed.
type RunLog struct {
	mu        sync.Mutex
	dir       string
	retention time.Duration
	now       func() time.Time
}

func NewRunLog(dir string, retention time.Duration) *RunLog {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &RunLog{dir: dir, retention: retention, now: time.Now}
}

// Append records one line for a product import. Failures are returned,
// not fatal; callers log and continue.
func (l *RunLog) Append(productID int, message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}
	ts := l.now()
	name := filepath.Join(l.dir, runLogPrefix+ts.Format(runLogDateFmt)+runLogSuffix)
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] [product %d] %s\n", ts.Format("2006-01-02 15:04:05"), productID, message)
	_, err = f.WriteString(line)
	return err
}

// List returns the dates of the retained log files, newest first,
// pruning anything past the retention window first.
func (l *RunLog) List() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	cutoff := l.now().Add(-l.retention)
	var dates []string
	for _, e := range entries {
		day, ok := logFileDate(e.Name())
		if !ok {
			continue
		}
		// A file written on a given day stays visible until its whole
		// day falls outside the retention window.
		if day.Add(24 * time.Hour).Before(cutoff) {
			os.Remove(filepath.Join(l.dir, e.Name()))
			continue
		}
		dates = append(dates, day.Format(runLogDateFmt))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

// Read returns the contents of one day's log file.
func (l *RunLog) Read(date string) (string, error) {
	name, err := l.fileFor(date)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("no log for %s", date)
		}
		return "", err
	}
	return string(data), nil
}

// Clear removes one day's log file. Removing a missing file succeeds.
func (l *RunLog) Clear(date string) error {
	name, err := l.fileFor(date)
	if err != nil {
		return err
	}
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (l *RunLog) fileFor(date string) (string, error) {
	if _, err := time.Parse(runLogDateFmt, date); err != nil {
		return "", fmt.Errorf("invalid log date %q", date)
	}
	return filepath.Join(l.dir, runLogPrefix+date+runLogSuffix), nil
}

func logFileDate(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, runLogPrefix) || !strings.HasSuffix(name, runLogSuffix) {
		return time.Time{}, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(name, runLogPrefix), runLogSuffix)
	day, err := time.Parse(runLogDateFmt, raw)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
