package logtail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/bimmerbailey/surprise/internal/config"
	"github.com/fsnotify/fsnotify"
)

// ErrRotated is returned by Run when the file is rotated away and
// FollowRotate is off.
var ErrRotated = errors.New("log file rotated")

// Line is a single line emitted by a Follower, without its terminator.
type Line struct {
	Text   string          `json:"text"`
	Number int             `json:"line"`
	Level  config.LogLevel `json:"level"`
}

// Options configures the follower behavior.
type Options struct {
	FilePath     string           // Path to the log file
	Lines        int              // Number of initial lines to show (<= 0 shows none)
	Follow       bool             // Whether to keep watching for appended lines
	FollowRotate bool             // Whether to reopen the file after rotation
	Pattern      *regexp.Regexp   // Optional regex pattern to filter lines
	MinLevel     config.LogLevel  // Minimum level to display; LevelUnknown disables the filter
	OutputFunc   func(Line) error // Called for each matching line
	Logger       *slog.Logger     // Optional; rotation notices are logged here
	RotateWait   time.Duration    // How long to wait for a rotated file to reappear (default 10s)
}

// Follower prints the tail of a file and then follows appended lines.
type Follower struct {
	opts    Options
	file    *os.File
	offset  int64
	lineNum int
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

// NewFollower creates a Follower with the given options.
func NewFollower(opts Options) *Follower {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.RotateWait <= 0 {
		opts.RotateWait = 10 * time.Second
	}
	return &Follower{opts: opts, logger: logger}
}

// Run emits the initial tail and, when Follow is set, blocks emitting new
// lines until ctx is cancelled or an error occurs.
func (f *Follower) Run(ctx context.Context) error {
	if f.opts.OutputFunc == nil {
		return errors.New("logtail: OutputFunc is required")
	}

	if err := f.openFile(); err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.close()

	if err := f.readInitialLines(); err != nil {
		return fmt.Errorf("failed to read initial lines: %w", err)
	}

	if !f.opts.Follow {
		return nil
	}

	if err := f.setupWatcher(); err != nil {
		return fmt.Errorf("failed to setup watcher: %w", err)
	}

	return f.watch(ctx)
}

func (f *Follower) openFile() error {
	file, err := os.Open(f.opts.FilePath)
	if err != nil {
		return err
	}
	f.file = file
	return nil
}

// readInitialLines streams the file once, emits the last Lines matching
// lines and leaves the offset at the end of the last complete line. Only
// the kept tail is held in memory.
func (f *Follower) readInitialLines() error {
	f.offset = 0
	f.lineNum = 0
	tail := tailBuffer{n: f.opts.Lines}

	br := bufio.NewReader(f.file)
	for {
		raw, err := br.ReadString('\n')
		if raw != "" {
			partial := !strings.HasSuffix(raw, "\n")
			if partial && f.opts.Follow {
				// Picked up once its newline arrives.
				break
			}
			if !partial {
				f.offset += int64(len(raw))
			}
			f.lineNum++
			if tail.n > 0 {
				if line, ok := f.filter(raw); ok {
					tail.push(line)
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}

	for _, line := range tail.lines() {
		if err := f.opts.OutputFunc(line); err != nil {
			return err
		}
	}
	return nil
}

// tailBuffer keeps the last n lines pushed into it, compacting once it holds
// twice that many. n <= 0 keeps nothing.
type tailBuffer struct {
	n   int
	buf []Line
}

func (b *tailBuffer) push(l Line) {
	if b.n <= 0 {
		return
	}
	b.buf = append(b.buf, l)
	if len(b.buf)-b.n >= b.n {
		b.buf = append(b.buf[:0], b.buf[len(b.buf)-b.n:]...)
	}
}

func (b *tailBuffer) lines() []Line {
	if len(b.buf) > b.n {
		return b.buf[len(b.buf)-b.n:]
	}
	return b.buf
}

func (f *Follower) setupWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	f.watcher = watcher

	return watcher.Add(f.opts.FilePath)
}

func (f *Follower) watch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-f.watcher.Events:
			if !ok {
				return errors.New("watcher closed unexpectedly")
			}
			if err := f.handleEvent(ctx, event); err != nil {
				return err
			}

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (f *Follower) handleEvent(ctx context.Context, event fsnotify.Event) error {
	switch {
	case event.Has(fsnotify.Write):
		return f.readNewContent()
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		return f.handleRotation(ctx)
	}
	return nil
}

// readNewContent emits complete lines written since the last read. A file
// that shrank was truncated in place, so reading restarts from the top.
func (f *Follower) readNewContent() error {
	stat, err := f.file.Stat()
	if err != nil {
		return err
	}
	if stat.Size() < f.offset {
		f.logger.Info("log file truncated, reading from start", "path", f.opts.FilePath)
		f.offset = 0
	}

	if _, err := f.file.Seek(f.offset, io.SeekStart); err != nil {
		return err
	}

	br := bufio.NewReader(f.file)
	for {
		raw, err := br.ReadString('\n')
		if err == io.EOF {
			// Leave any partial line for the next write event.
			return nil
		}
		if err != nil {
			return err
		}

		f.offset += int64(len(raw))
		f.lineNum++
		if line, ok := f.filter(raw); ok {
			if err := f.opts.OutputFunc(line); err != nil {
				return err
			}
		}
	}
}

func (f *Follower) handleRotation(ctx context.Context) error {
	if !f.opts.FollowRotate {
		return fmt.Errorf("%w: %s", ErrRotated, f.opts.FilePath)
	}

	if f.file != nil {
		f.file.Close()
		f.file = nil
	}

	timeout := time.After(f.opts.RotateWait)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timeout:
			return errors.New("timeout waiting for rotated file to reappear")
		case <-ticker.C:
			file, err := os.Open(f.opts.FilePath)
			if err != nil {
				continue
			}
			f.file = file
			f.offset = 0

			if err := f.watcher.Add(f.opts.FilePath); err != nil {
				return fmt.Errorf("failed to watch rotated file: %w", err)
			}
			f.logger.Info("log file rotated, following new file", "path", f.opts.FilePath)
			return f.readNewContent()
		}
	}
}

// filter strips the terminator from raw and applies the level and pattern
// filters. Blank lines are dropped.
func (f *Follower) filter(raw string) (Line, bool) {
	text := strings.TrimRight(raw, "\r\n")
	if strings.TrimSpace(text) == "" {
		return Line{}, false
	}

	line := Line{Text: text, Number: f.lineNum, Level: config.DetectLevel(text)}
	return line, f.shouldDisplay(line)
}

// shouldDisplay checks if a line matches the filter criteria. Lines whose
// level cannot be detected always pass the level filter.
func (f *Follower) shouldDisplay(line Line) bool {
	if f.opts.MinLevel != config.LevelUnknown && line.Level != config.LevelUnknown {
		if line.Level < f.opts.MinLevel {
			return false
		}
	}

	if f.opts.Pattern != nil && !f.opts.Pattern.MatchString(line.Text) {
		return false
	}

	return true
}

func (f *Follower) close() {
	if f.file != nil {
		f.file.Close()
	}
	if f.watcher != nil {
		f.watcher.Close()
	}
}
