package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"skabillium/lqueue/cmd/queue"
)

const MaxSourceDepth = 8

var (
	ErrErrorLimit  = errors.New("error limit exceeded")
	ErrSourceDepth = errors.New("source files nested too deeply")
	ErrNewFailed   = errors.New("queue allocation failed")
)

// Console drives a single queue from text commands and cross-checks every
// result against its own element count and the allocation books.
type Console struct {
	out        io.Writer
	log        *logrus.Logger
	opts       *Options
	acct       *queue.Accountant
	q          *queue.Queue
	count      int
	errors     int
	transcript *Transcript
	depth      int
	quit       bool

	source string
	line   int
	cmd    string
}

func NewConsole(out io.Writer, logger *logrus.Logger, opts *Options) *Console {
	acct := queue.NewAccountant(opts.Seed)
	acct.FailRate = opts.Malloc
	logger.SetLevel(opts.LogLevel())

	return &Console{out: out, log: logger, opts: opts, acct: acct}
}

func (c *Console) Writeln(message string) {
	fmt.Fprintln(c.out, message)
	c.record(message)
}

func (c *Console) Error(err error) {
	c.errors++
	c.entry().Error(err.Error())
	c.record("ERROR: " + err.Error())
}

func (c *Console) Warn(message string) {
	c.entry().Warn(message)
	c.record("WARNING: " + message)
}

func (c *Console) Errors() int {
	return c.errors
}

func (c *Console) entry() *logrus.Entry {
	return c.log.WithFields(logrus.Fields{"source": c.source, "line": c.line, "cmd": c.cmd})
}

func (c *Console) record(line string) {
	if err := c.transcript.Writeln(line); err != nil {
		c.log.WithError(err).Warn("Disabling log file")
		c.transcript.Close()
		c.transcript = nil
	}
}

func (c *Console) limitReached() bool {
	return c.opts.ErrorLimit > 0 && c.errors >= c.opts.ErrorLimit
}

// Run executes commands line by line until the input ends, quit is issued
// or the error limit is reached.
func (c *Console) Run(r io.Reader, name string) error {
	prevSource, prevLine := c.source, c.line
	c.source, c.line = name, 0
	defer func() { c.source, c.line = prevSource, prevLine }()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		c.line++
		c.Execute(scanner.Text())
		if c.limitReached() {
			return ErrErrorLimit
		}
		if c.quit {
			return nil
		}
	}

	return errors.Wrapf(scanner.Err(), "failed to read %s", name)
}

func (c *Console) Source(path string) error {
	if c.depth >= MaxSourceDepth {
		return ErrSourceDepth
	}

	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "failed to open source file")
	}
	defer file.Close()

	c.depth++
	defer func() { c.depth-- }()
	return c.Run(file, path)
}

func (c *Console) Execute(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	c.cmd = line
	if c.opts.Echo {
		c.echo(line)
	}

	cmd, err := ParseCommand(line)
	if err != nil {
		c.Error(err)
		return
	}
	c.entry().Trace("Executing command")

	switch cmd.Kind {
	case CmdNew:
		c.newQueue()
	case CmdFree:
		if c.q == nil {
			c.Warn("Calling free on null queue")
		}
		c.release()
		c.show()
	case CmdInsertHead, CmdInsertTail:
		c.insert(cmd)
	case CmdRemoveHead, CmdRemoveHeadQuiet:
		c.removeHead(cmd)
	case CmdReverse:
		if c.q == nil {
			c.Warn("Calling reverse on null queue")
		}
		c.q.Reverse()
		c.show()
	case CmdSort:
		if c.q == nil {
			c.Warn("Calling sort on null queue")
		}
		c.q.Sort()
		if !c.q.Sorted() {
			c.Error(errors.New("queue not sorted in ascending order"))
		}
		c.show()
	case CmdSize:
		c.size(cmd.Count)
	case CmdShow:
		c.show()
	case CmdOption:
		c.option(cmd)
		return
	case CmdSource:
		if err := c.Source(cmd.Name); err != nil && err != ErrErrorLimit {
			c.Error(err)
		}
		return
	case CmdLog:
		c.openLog(cmd.Name)
		return
	case CmdHelp:
		for _, h := range helpText {
			c.Writeln(fmt.Sprintf("\t%-18s | %s", h[0], h[1]))
		}
		return
	case CmdQuit:
		c.quit = true
		return
	}

	c.check()
}

// Finish frees any remaining queue, reports leaks and returns the number of
// errors seen during the run.
func (c *Console) Finish() int {
	if c.q != nil {
		c.Writeln("Freeing queue")
		c.release()
	}

	if err := c.transcript.Close(); err != nil {
		c.log.WithError(err).Warn("Failed to close log file")
	}
	c.transcript = nil
	return c.errors
}

func (c *Console) echo(line string) {
	if words, err := sanitize(line); err == nil {
		line = StringifyCommand(words)
	}
	c.Writeln("cmd> " + line)
}

func (c *Console) newQueue() {
	if c.q != nil {
		c.release()
	}

	c.acct.Arm()
	c.q = queue.New(queue.WithAllocator(c.acct), queue.WithSortStrategy(c.opts.SortStrategy()))
	c.acct.Disarm()
	c.count = 0

	if c.q == nil {
		if c.opts.Malloc == 0 {
			c.Error(ErrNewFailed)
		} else {
			c.Warn("Queue allocation refused by fault injection")
		}
	}
	c.show()
}

func (c *Console) release() {
	c.q.Free()
	c.q, c.count = nil, 0

	blocks, held := c.acct.Outstanding()
	if blocks > 0 {
		c.Error(errors.Errorf("%d blocks still allocated after free (%s)", blocks, humanize.Bytes(uint64(held))))
	}
}

func (c *Console) insert(cmd *Command) {
	if c.q == nil {
		c.Warn("Calling insert on null queue")
	}

	for i := 0; i < cmd.Count; i++ {
		var ok bool
		c.acct.Arm()
		if cmd.Kind == CmdInsertHead {
			ok = c.q.InsertHead(cmd.Value)
		} else {
			ok = c.q.InsertTail(cmd.Value)
		}
		c.acct.Disarm()

		if ok {
			c.count++
			continue
		}
		if c.q != nil && c.opts.Malloc == 0 {
			c.Error(errors.Errorf("insertion of '%s' failed", cmd.Value))
			break
		}
	}
	c.show()
}

func (c *Console) removeHead(cmd *Command) {
	if c.q == nil {
		c.Warn("Calling remove head on null queue")
	} else if c.count == 0 {
		c.Warn("Calling remove head on empty queue")
	}

	var (
		buf     []byte
		removed string
		ok      bool
	)
	switch {
	case cmd.Kind == CmdRemoveHeadQuiet:
		ok = c.q.RemoveHead(nil)
	case c.opts.Length == 0:
		removed, ok = c.q.PopHead()
	default:
		buf = bytes.Repeat([]byte{'X'}, c.opts.Length)
		ok = c.q.RemoveHead(buf)
	}

	if !ok {
		if c.count > 0 {
			c.Error(errors.New("failed to remove from non-empty queue"))
		}
		c.show()
		return
	}

	if c.count == 0 {
		c.Error(errors.New("removed an element from an empty queue"))
		c.show()
		return
	}
	c.count--

	if cmd.Kind == CmdRemoveHeadQuiet {
		c.Writeln("Removed element from queue")
		c.show()
		return
	}

	expected := cmd.Value
	if buf != nil {
		end := bytes.IndexByte(buf, 0)
		if end < 0 {
			c.Error(errors.New("removed value is not terminated"))
			c.show()
			return
		}
		removed = string(buf[:end])
		if len(expected) > len(buf)-1 {
			expected = expected[:len(buf)-1]
		}
	}

	if cmd.HasValue && removed != expected {
		c.Error(errors.Errorf("removed value '%s' does not match expected value '%s'", removed, expected))
	}
	c.Writeln(fmt.Sprintf("Removed %s from queue", removed))
	c.show()
}

func (c *Console) size(times int) {
	if c.q == nil {
		c.Warn("Computing size of null queue")
	}

	size := 0
	for i := 0; i < times; i++ {
		size = c.q.Size()
		if size != c.count {
			c.Error(errors.Errorf("computed queue size as %d, but correct value is %d", size, c.count))
			break
		}
	}
	c.Writeln(fmt.Sprintf("Queue size = %d", size))
}

func (c *Console) show() {
	if c.q == nil {
		c.Writeln("q = NULL")
		return
	}
	c.Writeln("q = [" + strings.Join(c.q.Values(), " ") + "]")
}

func (c *Console) option(cmd *Command) {
	if !cmd.HasValue {
		for _, entry := range c.opts.List() {
			c.Writeln(fmt.Sprintf("\t%s\t%s", entry[0], entry[1]))
		}
		return
	}

	if err := c.opts.Set(cmd.Name, cmd.Value); err != nil {
		c.Error(err)
		return
	}

	c.acct.FailRate = c.opts.Malloc
	c.log.SetLevel(c.opts.LogLevel())
	switch cmd.Name {
	case "seed":
		c.Warn("Seed only applies at startup")
	case "sort":
		c.Warn("Sort strategy applies to queues created from now on")
	}
}

func (c *Console) openLog(path string) {
	if err := c.transcript.Close(); err != nil {
		c.log.WithError(err).Warn("Failed to close log file")
	}
	c.transcript = nil

	transcript, err := OpenTranscript(path)
	if err != nil {
		c.Error(err)
		return
	}
	c.transcript = transcript
}

// Cross-check the queue against the harness count and the allocation books.
func (c *Console) check() {
	for _, fault := range c.acct.Faults() {
		c.Error(errors.New(fault))
	}
	if c.q == nil {
		return
	}

	if err := c.q.Validate(); err != nil {
		c.Error(errors.Wrap(err, "queue invariant broken"))
		return
	}
	if size := c.q.Size(); size != c.count {
		c.Error(errors.Errorf("queue holds %d elements, expected %d", size, c.count))
	}
	if nodes := c.acct.Blocks(queue.BlockNode); nodes != c.count {
		c.Error(errors.Errorf("%d nodes allocated for %d elements", nodes, c.count))
	}
	if values := c.acct.Blocks(queue.BlockValue); values != c.count {
		c.Error(errors.Errorf("%d values allocated for %d elements", values, c.count))
	}
}
