package main

import (
	"bufio"
	"os"

	"github.com/pkg/errors"
)

// Transcript copies console output to a file, one line per write.
type Transcript struct {
	file *os.File
	w    *bufio.Writer
}

func OpenTranscript(path string) (*Transcript, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open log file")
	}

	return &Transcript{file: file, w: bufio.NewWriter(file)}, nil
}

func (t *Transcript) Writeln(line string) error {
	if t == nil {
		return nil
	}

	if _, err := t.w.WriteString(line + "\n"); err != nil {
		return errors.Wrap(err, "failed to write log file")
	}
	return nil
}

func (t *Transcript) Close() error {
	if t == nil {
		return nil
	}

	if err := t.w.Flush(); err != nil {
		t.file.Close()
		return errors.Wrap(err, "failed to flush log file")
	}
	return t.file.Close()
}
