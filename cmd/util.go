package main

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"skabillium/lqueue/cmd/queue"
)

const (
	DefaultLength     = 1024
	DefaultErrorLimit = 5
	DefaultVerbose    = 2
	DefaultConfig     = "qtest.yaml"
)

var ErrUnknownOption = errors.New("unknown option")

type Options struct {
	Malloc     int    `yaml:"malloc"`
	Length     int    `yaml:"length"`
	Echo       bool   `yaml:"echo"`
	ErrorLimit int    `yaml:"error"`
	Verbose    int    `yaml:"verbose"`
	Sort       string `yaml:"sort"`
	Seed       int64  `yaml:"seed"`
}

func DefaultOptions() *Options {
	return &Options{
		Length:     DefaultLength,
		ErrorLimit: DefaultErrorLimit,
		Verbose:    DefaultVerbose,
		Sort:       "merge",
		Seed:       1,
	}
}

// Read options from a yaml file on top of the defaults
func LoadOptions(path string) (*Options, error) {
	options := DefaultOptions()
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}

	if err := yaml.Unmarshal(content, options); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if err := options.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}

	return options, nil
}

func (o *Options) Validate() error {
	if o.Malloc < 0 || o.Malloc > 100 {
		return errors.Errorf("malloc must be between 0 and 100, got %d", o.Malloc)
	}
	if o.Length < 0 {
		return errors.Errorf("length must not be negative, got %d", o.Length)
	}
	if o.ErrorLimit < 0 {
		return errors.Errorf("error limit must not be negative, got %d", o.ErrorLimit)
	}
	if o.Verbose < 0 || o.Verbose > 4 {
		return errors.Errorf("verbose must be between 0 and 4, got %d", o.Verbose)
	}
	if o.Sort != "merge" && o.Sort != "selection" {
		return errors.Errorf("sort must be 'merge' or 'selection', got '%s'", o.Sort)
	}

	return nil
}

func (o *Options) Set(name string, value string) error {
	next := *o
	var err error
	switch name {
	case "malloc":
		next.Malloc, err = strconv.Atoi(value)
	case "length":
		next.Length, err = strconv.Atoi(value)
	case "echo":
		next.Echo, err = strconv.ParseBool(value)
	case "error":
		next.ErrorLimit, err = strconv.Atoi(value)
	case "verbose":
		next.Verbose, err = strconv.Atoi(value)
	case "sort":
		next.Sort = strings.ToLower(value)
	case "seed":
		next.Seed, err = strconv.ParseInt(value, 10, 64)
	default:
		return errors.Wrap(ErrUnknownOption, name)
	}

	if err != nil {
		return errors.Errorf("invalid value '%s' for option '%s'", value, name)
	}
	if err := next.Validate(); err != nil {
		return err
	}

	*o = next
	return nil
}

func (o *Options) List() [][2]string {
	res := [][2]string{
		{"malloc", strconv.Itoa(o.Malloc)},
		{"length", strconv.Itoa(o.Length)},
		{"echo", strconv.FormatBool(o.Echo)},
		{"error", strconv.Itoa(o.ErrorLimit)},
		{"verbose", strconv.Itoa(o.Verbose)},
		{"sort", o.Sort},
		{"seed", strconv.FormatInt(o.Seed, 10)},
	}
	sort.Slice(res, func(i, j int) bool { return res[i][0] < res[j][0] })
	return res
}

func (o *Options) SortStrategy() queue.SortStrategy {
	if o.Sort == "selection" {
		return queue.SelectionSort
	}
	return queue.MergeSort
}

// Verbosity 0 only reports errors, 4 traces every command.
func (o *Options) LogLevel() logrus.Level {
	return logrus.ErrorLevel + logrus.Level(o.Verbose)
}

// Quote words so the line parses back the same
func StringifyCommand(args []string) string {
	var exec string
	for i, s := range args {
		if i != 0 {
			exec += " "
		}

		if s == "" || strings.ContainsAny(s, " \t\n\v\f\r'\"") {
			quote := "\""
			if strings.Contains(s, "\"") {
				quote = "'"
			}
			s = quote + s + quote
		}

		exec += s
	}

	return exec
}

// Check if a given file path exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !errors.Is(err, os.ErrNotExist)
}
