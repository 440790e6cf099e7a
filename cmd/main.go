package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const Version = "0.1.0"

func NewLogger(out io.Writer) *logrus.Logger {
	return &logrus.Logger{
		Out: out,
		Formatter: &logrus.TextFormatter{
			DisableQuote:    true,
			FullTimestamp:   true,
			DisableSorting:  true,
			TimestampFormat: "2006-01-02T15:04:05.999999Z07:00",
		},
		Hooks: make(logrus.LevelHooks),
		Level: logrus.InfoLevel,
	}
}

// Config file first, then any flag given on the command line
func getOptions(c *cli.Context) (*Options, error) {
	options := DefaultOptions()
	path := c.Path("config")
	if path == "" && FileExists(DefaultConfig) {
		path = DefaultConfig
	}
	if path != "" {
		loaded, err := LoadOptions(path)
		if err != nil {
			return nil, err
		}
		options = loaded
	}

	if c.IsSet("malloc") {
		options.Malloc = c.Int("malloc")
	}
	if c.IsSet("length") {
		options.Length = c.Int("length")
	}
	if c.IsSet("echo") {
		options.Echo = c.Bool("echo")
	}
	if c.IsSet("error-limit") {
		options.ErrorLimit = c.Int("error-limit")
	}
	if c.IsSet("verbose") {
		options.Verbose = c.Int("verbose")
	}
	if c.IsSet("sort") {
		options.Sort = c.String("sort")
	}
	if c.IsSet("seed") {
		options.Seed = c.Int64("seed")
	}

	return options, options.Validate()
}

func run(c *cli.Context) error {
	options, err := getOptions(c)
	if err != nil {
		return err
	}

	logger := NewLogger(errWriter(c.App))
	console := NewConsole(writer(c.App), logger, options)
	if path := c.Path("log"); path != "" {
		console.openLog(path)
	}

	if path := c.Path("file"); path != "" {
		err = console.Source(path)
	} else {
		err = console.Run(reader(c.App), "stdin")
	}
	if err == ErrErrorLimit {
		logger.Error("Error limit exceeded, stopping command execution")
	} else if err != nil {
		console.Error(err)
	}

	if errs := console.Finish(); errs > 0 {
		return cli.Exit(fmt.Sprintf("%d errors", errs), 1)
	}
	return nil
}

func reader(app *cli.App) io.Reader {
	if app.Reader == nil {
		return os.Stdin
	}
	return app.Reader
}

func writer(app *cli.App) io.Writer {
	if app.Writer == nil {
		return os.Stdout
	}
	return app.Writer
}

func errWriter(app *cli.App) io.Writer {
	if app.ErrWriter == nil {
		return os.Stderr
	}
	return app.ErrWriter
}

func NewApp() *cli.App {
	return &cli.App{
		Name:    "qtest",
		Usage:   "exercise a string queue with scripted commands",
		Version: Version,
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:  "config",
				Usage: "YAML file with harness options (default: ./" + DefaultConfig + " when present)",
			},
			&cli.PathFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read commands from file instead of stdin",
			},
			&cli.PathFlag{
				Name:    "log",
				Aliases: []string{"l"},
				Usage:   "Copy output to file",
			},
			&cli.IntFlag{
				Name:  "malloc",
				Usage: "Percentage of allocations to refuse during queue operations",
			},
			&cli.IntFlag{
				Name:  "length",
				Value: DefaultLength,
				Usage: "Buffer capacity used when removing from the head (0 returns whole values)",
			},
			&cli.BoolFlag{
				Name:  "echo",
				Usage: "Echo commands as they are executed",
			},
			&cli.IntFlag{
				Name:  "error-limit",
				Value: DefaultErrorLimit,
				Usage: "Number of errors before execution stops (0 for no limit)",
			},
			// -v is taken by --version
			&cli.IntFlag{
				Name:  "verbose",
				Value: DefaultVerbose,
				Usage: "log verbosity level: 0 (Error), 1 (Warning), 2 (Info), 3 (Debug), 4 (Trace)",
			},
			&cli.StringFlag{
				Name:  "sort",
				Value: "merge",
				Usage: "Sort strategy: merge or selection",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Value: 1,
				Usage: "Seed for allocation fault injection",
			},
		},
		Action: run,
	}
}

func main() {
	if err := NewApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
