package logtail

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bimmerbailey/surprise/internal/config"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// Helper function to collect output lines (thread-safe)
func collectingOutputFunc() (func(Line) error, func() []Line) {
	var mu sync.Mutex
	var lines []Line

	outputFunc := func(l Line) error {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, l)
		return nil
	}

	get := func() []Line {
		mu.Lock()
		defer mu.Unlock()
		result := make([]Line, len(lines))
		copy(result, lines)
		return result
	}

	return outputFunc, get
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestFollower_InitialLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		lines   int
		want    []string
	}{
		{"last 3 of 5", "line 1\nline 2\nline 3\nline 4\nline 5\n", 3, []string{"line 3", "line 4", "line 5"}},
		{"more than exist", "line 1\nline 2\n", 10, []string{"line 1", "line 2"}},
		{"blank lines skipped", "line 1\n\nline 3\n\n\nline 6\n", 10, []string{"line 1", "line 3", "line 6"}},
		{"partial final line shown", "line 1\nline 2", 5, []string{"line 1", "line 2"}},
		{"empty file", "", 10, nil},
		{"zero lines", "line 1\n", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createTempLogFile(t, tt.content)
			out, got := collectingOutputFunc()

			f := NewFollower(Options{FilePath: path, Lines: tt.lines, OutputFunc: out})
			if err := f.Run(context.Background()); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			lines := got()
			if len(lines) != len(tt.want) {
				t.Fatalf("expected %d lines, got %d", len(tt.want), len(lines))
			}
			for i, w := range tt.want {
				if lines[i].Text != w {
					t.Errorf("line %d = %q, want %q", i, lines[i].Text, w)
				}
			}
		})
	}
}

func TestFollower_InitialLinesLargeFile(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 5000; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}
	path := createTempLogFile(t, sb.String())
	out, got := collectingOutputFunc()

	f := NewFollower(Options{FilePath: path, Lines: 2, OutputFunc: out})
	if err := f.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	lines := got()
	if len(lines) != 2 || lines[0].Text != "line 4999" || lines[1].Text != "line 5000" {
		t.Fatalf("unexpected tail %+v", lines)
	}
	if lines[1].Number != 5000 {
		t.Errorf("Number = %d, want 5000", lines[1].Number)
	}
	if f.offset != int64(sb.Len()) {
		t.Errorf("offset = %d, want %d", f.offset, sb.Len())
	}
}

func TestTailBuffer(t *testing.T) {
	b := tailBuffer{n: 3}
	for i := 1; i <= 100; i++ {
		b.push(Line{Number: i})
		if len(b.buf) >= 2*b.n {
			t.Fatalf("buffer grew to %d lines after %d pushes", len(b.buf), i)
		}
	}

	got := b.lines()
	if len(got) != 3 || got[0].Number != 98 || got[2].Number != 100 {
		t.Errorf("lines() = %+v, want 98..100", got)
	}

	none := tailBuffer{n: 0}
	none.push(Line{Number: 1})
	if len(none.lines()) != 0 {
		t.Error("a zero bound should keep nothing")
	}
}

func TestFollower_Filters(t *testing.T) {
	content := `2025-01-26 10:00:00 DEBUG cache warm user_id=1
2025-01-26 10:00:01 INFO request served user_id=2
2025-01-26 10:00:02 WARN slow query
2025-01-26 10:00:03 ERROR payment failed user_id=2
plain line with no level user_id=3
`
	tests := []struct {
		name     string
		minLevel config.LogLevel
		pattern  string
		want     int
	}{
		{"no filter", config.LevelUnknown, "", 5},
		{"warn and above keeps unknown", config.LevelWarn, "", 3},
		{"error and above", config.LevelError, "", 2},
		{"pattern only", config.LevelUnknown, `user_id=2`, 2},
		{"level and pattern", config.LevelError, `user_id`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createTempLogFile(t, content)
			out, got := collectingOutputFunc()

			opts := Options{FilePath: path, Lines: 10, MinLevel: tt.minLevel, OutputFunc: out}
			if tt.pattern != "" {
				opts.Pattern = regexp.MustCompile(tt.pattern)
			}
			if err := NewFollower(opts).Run(context.Background()); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if n := len(got()); n != tt.want {
				t.Errorf("expected %d lines, got %d", tt.want, n)
			}
		})
	}
}

func TestFollower_LineMetadata(t *testing.T) {
	path := createTempLogFile(t, "INFO boot\n\nERROR crash\n")
	out, got := collectingOutputFunc()

	if err := NewFollower(Options{FilePath: path, Lines: 10, OutputFunc: out}).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	lines := got()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[1].Number != 3 || lines[1].Level != config.LevelError {
		t.Errorf("unexpected metadata: %+v", lines[1])
	}
}

func TestFollower_MissingFile(t *testing.T) {
	out, _ := collectingOutputFunc()
	err := NewFollower(Options{FilePath: filepath.Join(t.TempDir(), "nope.log"), OutputFunc: out}).Run(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestFollower_RequiresOutputFunc(t *testing.T) {
	path := createTempLogFile(t, "x\n")
	if err := NewFollower(Options{FilePath: path}).Run(context.Background()); err == nil {
		t.Error("expected error without OutputFunc")
	}
}

func TestFollower_FollowMode(t *testing.T) {
	path := createTempLogFile(t, "line 1\nline 2\n")
	out, got := collectingOutputFunc()

	f := NewFollower(Options{FilePath: path, Lines: 2, Follow: true, OutputFunc: out})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- f.Run(ctx)
	}()

	waitFor(t, func() bool { return len(got()) == 2 })
	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)

	fh, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("Failed to open file for append: %v", err)
	}
	if _, err := fh.WriteString("line 3\npartial"); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}

	waitFor(t, func() bool { return len(got()) == 3 })
	if got()[2].Text != "line 3" {
		t.Errorf("third line = %q", got()[2].Text)
	}

	if _, err := fh.WriteString(" done\n"); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	fh.Close()

	waitFor(t, func() bool { return len(got()) == 4 })
	if got()[3].Text != "partial done" {
		t.Errorf("partial line should be joined once complete, got %q", got()[3].Text)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Follower did not stop within timeout")
	}
}

func TestFollower_RotationWithoutFollowRotate(t *testing.T) {
	path := createTempLogFile(t, "line 1\n")
	out, _ := collectingOutputFunc()

	f := NewFollower(Options{FilePath: path, Lines: 1, Follow: true, OutputFunc: out})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- f.Run(ctx)
	}()

	time.Sleep(200 * time.Millisecond)
	if err := os.Rename(path, path+".1"); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrRotated) {
			t.Errorf("expected ErrRotated, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Error("Follower did not report rotation")
	}
}

func TestShouldDisplay(t *testing.T) {
	tests := []struct {
		name     string
		line     Line
		minLevel config.LogLevel
		pattern  *regexp.Regexp
		expected bool
	}{
		{"no filters", Line{Text: "test", Level: config.LevelInfo}, config.LevelUnknown, nil, true},
		{"level matches", Line{Text: "boom", Level: config.LevelError}, config.LevelError, nil, true},
		{"below threshold", Line{Text: "hi", Level: config.LevelInfo}, config.LevelError, nil, false},
		{"unknown level passes", Line{Text: "hi", Level: config.LevelUnknown}, config.LevelError, nil, true},
		{"pattern no match", Line{Text: "hi", Level: config.LevelInfo}, config.LevelUnknown, regexp.MustCompile("user"), false},
		{"both match", Line{Text: "user", Level: config.LevelFatal}, config.LevelError, regexp.MustCompile("user"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFollower(Options{MinLevel: tt.minLevel, Pattern: tt.pattern})
			if got := f.shouldDisplay(tt.line); got != tt.expected {
				t.Errorf("shouldDisplay() = %v, expected %v", got, tt.expected)
			}
		})
	}
}
