package logging

import (
	"bytes"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// TimeLayout is the timestamp written at the start of every line.
const TimeLayout = "2006-01-02-T15-04-05"

// Options configures the run log
type Options struct {
	File   string    // log file path; empty disables the file sink
	Quiet  bool      // drop the console writer
	Stderr io.Writer // console writer; defaults to os.Stderr
}

// New returns a logger that writes "<timestamp> [level] message" lines to
// the console and to a size-rotated log file. Messages that do not start
// with a "[level]" tag are logged as [info]. The returned closer releases
// the file sink.
func New(opts Options) (*log.Logger, io.Closer) {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if !opts.Quiet {
		stderr := opts.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		writers = append(writers, stderr)
	}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
		}
		writers = append(writers, lj)
		closer = lj
	}

	var out io.Writer = io.Discard
	if len(writers) > 0 {
		out = io.MultiWriter(writers...)
	}
	return log.New(&stampWriter{out: out, now: time.Now}, "", 0), closer
}

type stampWriter struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

func (w *stampWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteString(w.now().UTC().Format(TimeLayout))
	buf.WriteByte(' ')
	if !bytes.HasPrefix(p, []byte("[")) {
		buf.WriteString("[info] ")
	}
	buf.Write(p)
	if _, err := w.out.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
