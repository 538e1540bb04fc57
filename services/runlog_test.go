package services

import (
	"strings"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRunLogAppendAndRead(t *testing.T) {
	l := NewRunLog(t.TempDir(), 24*time.Hour)
	l.now = fixedClock(time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC))

	if err := l.Append(62553, "OK: product 1 created"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := l.Append(62554, "FAILED: no reference"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	content, err := l.Read("2026-08-28")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), content)
	}
	if !strings.Contains(lines[0], "[product 62553]") || !strings.Contains(lines[0], "OK:") {
		t.Errorf("first line = %q", lines[0])
	}
}

func TestRunLogListPrunesOldFiles(t *testing.T) {
	dir := t.TempDir()
	l := NewRunLog(dir, 24*time.Hour)

	l.now = fixedClock(time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC))
	if err := l.Append(1, "old entry"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	l.now = fixedClock(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))
	if err := l.Append(2, "fresh entry"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	dates, err := l.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(dates) != 1 || dates[0] != "2026-08-28" {
		t.Errorf("dates = %v, want only 2026-08-28", dates)
	}
	if _, err := l.Read("2026-08-25"); err == nil {
		t.Error("pruned file should be gone")
	}
}

func TestRunLogClear(t *testing.T) {
	l := NewRunLog(t.TempDir(), 24*time.Hour)
	l.now = fixedClock(time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC))

	if err := l.Append(1, "entry"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := l.Clear("2026-08-28"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := l.Read("2026-08-28"); err == nil {
		t.Error("cleared file should be gone")
	}
	// Clearing an absent day is not an error.
	if err := l.Clear("2026-08-27"); err != nil {
		t.Errorf("Clear of absent day: %v", err)
	}
}

func TestRunLogRejectsBadDates(t *testing.T) {
	l := NewRunLog(t.TempDir(), 24*time.Hour)

	if _, err := l.Read("not-a-date"); err == nil {
		t.Error("bad date should fail Read")
	}
	if err := l.Clear("../../etc/passwd"); err == nil {
		t.Error("path-like date should fail Clear")
	}
}

func TestRunLogListEmptyDir(t *testing.T) {
	l := NewRunLog(t.TempDir()+"/missing", 24*time.Hour)

	dates, err := l.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(dates) != 0 {
		t.Errorf("dates = %v", dates)
	}
}
