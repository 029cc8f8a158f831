package config

// This file implements CLI flag parsing and help text.
// Negated flags (e.g. --no-color) are applied after Parse so earlier layers
// (defaults, environment) hold unless the user passes the flag.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// errShowVersion is returned by parseArgs when --version was requested.
var errShowVersion = errors.New("version requested")

// ParseFlags parses os.Args into cfg. On --help or --version it prints and
// exits. On error it returns non-nil (e.g. unknown flag, missing positional
// args).
func ParseFlags(cfg *Config, version string) error {
	err := parseArgs(cfg, version, os.Args[1:], os.Stderr)
	switch {
	case errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	case errors.Is(err, errShowVersion):
		fmt.Fprintln(os.Stdout, "timespent v"+version)
		os.Exit(0)
	}
	return err
}

// negatedFlags holds boolean flags that are applied after Parse.
type negatedFlags struct {
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

func parseArgs(cfg *Config, version string, args []string, usageOut io.Writer) error {
	fs := flag.NewFlagSet("timespent", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { printUsage(usageOut, version) }

	var negated negatedFlags

	defineOutputFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, &negated)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(usageOut, version)
		}
		return err
	}

	applyNegatedFlags(cfg, &negated)

	if negated.showHelp {
		printUsage(usageOut, version)
		return flag.ErrHelp
	}
	if negated.showVersion {
		return errShowVersion
	}

	return parsePositionalArgs(fs, cfg)
}

// defineOutputFlags registers -o/--output, --extended, --progress-every.
func defineOutputFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "CSV output path")
	fs.StringVar(&cfg.OutputPath, "o", cfg.OutputPath, "Same as --output")
	fs.BoolVar(&cfg.Extended, "extended", cfg.Extended, "Append time_control, speed and link columns")
	fs.Int64Var(&cfg.ProgressEvery, "progress-every", cfg.ProgressEvery, "Refresh progress every N games")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Diagnose the archive and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
}

// defineUtilityFlags registers --version and --help.
func defineUtilityFlags(fs *flag.FlagSet, n *negatedFlags) {
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets ArchivePath and ExpectedGames. In CheckOnly mode
// only the archive is required.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	if cfg.CheckOnly {
		if len(args) < 1 || len(args) > 2 {
			return errors.New("need an archive path")
		}
		cfg.ArchivePath = args[0]
		return nil
	}
	if len(args) != 2 {
		return errors.New("need exactly <archive> and <expected_games>")
	}
	cfg.ArchivePath = args[0]
	n, err := parseCount(args[1], "expected games")
	if err != nil {
		return err
	}
	cfg.ExpectedGames = n
	return nil
}

// parseCount parses a non-negative game count; accepts "_" and "," digit
// separators since archive totals are usually copied from a listing page.
func parseCount(s, name string) (int64, error) {
	clean := strings.NewReplacer("_", "", ",", "").Replace(strings.TrimSpace(s))
	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a whole number (got %q)", name, s)
	}
	return n, nil
}

func printUsage(w io.Writer, version string) {
	const col1 = 28
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "timespent v" + version + " - per-game thinking time from PGN clock annotations"},
		{"", ""},
		{"  timespent [OPTIONS] <archive> <expected_games>", ""},
		{"", ""},
		{"Output", ""},
		{"  -o, --output <path>", "CSV output path (default: " + DefaultOutputFile + ")"},
		{"  --extended", "Append time_control, speed and link columns"},
		{"  --progress-every <n>", "Refresh progress every N games (default: 10000)"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -c, --check", "Detect compression, parse the first game, exit"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
		{"", ""},
		{"Environment", ""},
		{"  " + EnvOutput, "Default for --output"},
		{"  " + EnvLogFile, "Default for --log"},
		{"  " + EnvProgressEvery, "Default for --progress-every"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(w)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(w, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}
