package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"slang/internal/evaluator"
	"slang/internal/heap"
	"slang/internal/lexer"
	"slang/internal/object"
	"slang/internal/parser"
	"slang/internal/repl"
	"slang/internal/stats"
	"slang/internal/util"
)

var (
	// Version is set at build time via -ldflags.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"

	help    bool
	version bool
	// heap config
	strategy string
	// config file
	configFile string
	// log config
	logLevel string
	logFile  string
	// diagnostics config
	statsEnabled bool
	statsDriver  string
	statsDSN     string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	// heap config
	flag.StringVar(&strategy, "strategy", "", "Heap strategy: naive, rc, gc")
	// config file
	flag.StringVar(&configFile, "config", "", "Path to a TOML configuration file")
	// log config
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
	// diagnostics config
	flag.BoolVar(&statsEnabled, "stats", false, "Record per-statement heap/stack samples")
	flag.StringVar(&statsDriver, "stats-driver", "", "Stats sink SQL driver: sqlite3, mysql, postgres")
	flag.StringVar(&statsDSN, "stats-dsn", "", "Stats sink data source name")
}

func main() {
	flag.Parse()

	config, err := resolveConfiguration()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(config.LogLevel),
	}
	logWriter := configureLogWriter(config.LogFile)
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, loggerOptions))
	slog.SetDefault(defaultLogger)

	if version {
		printVersion()
		return
	}

	if help {
		printHelp()
		return
	}

	kind, err := heap.ParseKind(config.Strategy)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var recorder *stats.Recorder
	if config.Stats {
		recorder = stats.NewRecorder()
	}

	e := evaluator.New(heap.New(kind), os.Stdout, recorder)

	exitCode := 0
	if filename := flag.Arg(0); filename != "" {
		exitCode = runFile(e, filename)
	} else {
		if err := repl.Start(e, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			exitCode = 1
		}
	}

	if recorder != nil {
		flushStats(config, recorder)
	}

	os.Exit(exitCode)
}

// runFile executes one source file. Evaluation only starts after a clean
// parse; lexing and parsing problems abort before any statement runs.
func runFile(e *evaluator.Evaluator, filename string) int {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read '%s': %v\n", filename, err)
		return 1
	}

	src := string(source)
	p := parser.New(lexer.New(src), src)

	program := p.ParseProgram()
	if errors := p.Errors(); len(errors) != 0 {
		fmt.Fprintf(os.Stderr, "%s: parser errors:\n", filename)
		for _, msg := range errors {
			fmt.Fprintln(os.Stderr, "\t"+msg)
		}
		return 1
	}

	result := e.Eval(program)
	if evalErr, ok := result.(*object.Error); ok {
		fmt.Fprintln(os.Stderr, evalErr.Inspect())
		return 1
	}
	return 0
}

// resolveConfiguration loads the optional TOML file and overlays any flags
// the user set explicitly.
func resolveConfiguration() (util.Configuration, error) {
	config := util.DefaultConfiguration()
	if configFile != "" {
		loaded, err := util.LoadConfiguration(configFile)
		if err != nil {
			return config, err
		}
		config = loaded
	}

	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit

	if strategy != "" {
		config.Strategy = strategy
	}
	if logLevel != "" {
		config.LogLevel = logLevel
	}
	if logFile != "" {
		config.LogFile = logFile
	}
	if statsEnabled {
		config.Stats = true
	}
	if statsDriver != "" {
		config.StatsDriver = statsDriver
	}
	if statsDSN != "" {
		config.StatsDSN = statsDSN
	}

	return config, nil
}

func flushStats(config util.Configuration, recorder *stats.Recorder) {
	sink, err := stats.OpenSink(config.StatsDriver, config.StatsDSN)
	if err != nil {
		slog.Error("failed to open stats sink", slog.Any("error", err))
		return
	}
	defer sink.Close()

	if err := sink.Flush(recorder); err != nil {
		slog.Error("failed to flush stats", slog.Any("error", err))
	}
}

func configureLogWriter(logFile string) *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {
	fmt.Printf("slang version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: slang [options] [filename]

Options:
  -strategy <name>      Heap strategy: naive, rc, gc. Default is 'naive'.
  -config <path>        Load configuration from a TOML file (flags override it).
  -stats                Record per-statement heap/stack samples.
  -stats-driver <name>  Stats sink SQL driver: sqlite3, mysql, postgres. Default is 'sqlite3'.
  -stats-dsn <dsn>      Stats sink data source name. Default is 'slang-stats.db'.
  -help                 Display this help information and exit.
  -version              Display version information and exit.
  -log-level <level>    Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>      Specify a log file to write logs. Default is stderr.

Details:
This is the slang programming language.

Examples:
  slang                           Start an interactive session
  slang -strategy=rc myfile.sl    Execute the file under reference counting
  slang -stats myfile.sl          Execute and record memory samples

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
