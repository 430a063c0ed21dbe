// Package logtail reads the trailing lines of a local log file and follows it
// as it grows.
//
// [Read] never returns an error: a missing file yields [MissingFile] and any
// other I/O failure is turned into a descriptive string, so callers can show
// the result directly. [Follower] is the long-running variant used by
// "surprise logs -f".
package logtail

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"syscall"
)

const (
	// DefaultMaxLines is the bound applied when the caller does not choose one.
	DefaultMaxLines = 200

	// MissingFile is returned by Read when the path does not exist.
	MissingFile = "Log file does not exist."

	// ReadErrorPrefix starts every result of Read that reports an I/O failure.
	ReadErrorPrefix = "Error reading log file: "
)

// Read returns the last maxLines lines of the file at path, in order, with
// their line terminators intact. maxLines <= 0 returns the whole file.
//
// A missing file yields MissingFile regardless of maxLines, as does a path
// running through a regular file. Any other failure yields ReadErrorPrefix
// followed by the cause.
func Read(path string, maxLines int) string {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return MissingFile
		}
		return errorText(err)
	}
	defer f.Close()

	lines, err := lastLines(f, maxLines)
	if err != nil {
		return errorText(err)
	}
	return strings.Join(lines, "")
}

// Unreadable reports whether content is one of Read's notices rather than
// file content.
func Unreadable(content string) bool {
	return content == MissingFile || strings.HasPrefix(content, ReadErrorPrefix)
}

func errorText(err error) string {
	return ReadErrorPrefix + err.Error()
}

// lastLines returns the final n lines of r, each still carrying its "\n"
// terminator. A trailing fragment without a newline counts as a line.
// n <= 0 keeps every line.
func lastLines(r io.Reader, n int) ([]string, error) {
	br := bufio.NewReader(r)
	var lines []string

	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
			// Compact once the buffer holds twice the bound.
			if n > 0 && len(lines) >= 2*n {
				lines = append(lines[:0], lines[len(lines)-n:]...)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
