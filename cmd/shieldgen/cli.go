package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/KromDaniel/shieldgen/internal/config"
)

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// arrayFlags allows multiple values for the same flag
type arrayFlags []string

func (i *arrayFlags) String() string {
	return strings.Join(*i, ", ")
}

func (i *arrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

// invocation is the parsed command line.
type invocation struct {
	Config  *config.Config
	Analyze bool
	Watch   bool
}

// parseArgs resolves the command line into a configuration: defaults, then
// the -config file, then any flag given explicitly. shouldExit is true after
// -help or when no strategy file was named.
func parseArgs(args []string, output io.Writer) (inv *invocation, shouldExit bool, err error) {
	fs := flag.NewFlagSet("shieldgen", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, `
shieldgen - Generate the strategy table of a safety shield from a synthesized strategy dump.

Usage:
  shieldgen [options] [STRATEGY_FILE]

Arguments:
  STRATEGY_FILE
    Path to the strategy dump. Same as -strategy.

Options:
`)
		fs.PrintDefaults()
	}

	var metrics, modes arrayFlags
	strategyFlag := fs.String("strategy", "", "Path to the strategy dump.")
	targetFlag := fs.String("target", "", "C source file whose MAXOBS define and strategy region are rewritten.")
	configFlag := fs.String("config", "", "Path to an HCL pipeline file.")
	scenarioFlag := fs.String("scenario", "", "Scenario name, available as ${scenario} in the pipeline file.")
	goOutFlag := fs.String("go-out", "", "Also write the table as Go source to this path.")
	goPkgFlag := fs.String("go-package", "shield", "Package name for -go-out.")
	lenientFlag := fs.Bool("lenient-patch", false, "Leave missing target slots unchanged instead of failing.")
	buildFlag := fs.Bool("build", false, "Compile the patched target into a shared library.")
	failOnBuildFlag := fs.Bool("fail-on-build", false, "Exit non-zero when the build fails.")
	evaluateFlag := fs.String("evaluate", "", "Criticality evaluator command; $request, $scenario, $mode, $start and $end are expanded.")
	fs.Var(&metrics, "metric", "Evaluator metric (can be specified multiple times).")
	fs.Var(&modes, "eval-mode", "Evaluation mode: 'measure', 'scene' or 'scenario' (can be specified multiple times; default all three).")
	analyzeFlag := fs.Bool("analyze", false, "Print a summary of the dump and write nothing.")
	watchFlag := fs.Bool("watch", false, "Regenerate whenever the strategy dump changes.")
	logLevelFlag := fs.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logFormatFlag := fs.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := config.Default()
	if *configFlag != "" {
		cfg, err = config.LoadFile(*configFlag, cfg, *scenarioFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
	} else if set["scenario"] {
		cfg.Scenario = *scenarioFlag
	}

	switch {
	case set["strategy"]:
		cfg.StrategyPath = *strategyFlag
	case fs.NArg() > 0:
		cfg.StrategyPath = fs.Arg(0)
	}
	if cfg.StrategyPath == "" {
		fs.Usage()
		return nil, true, nil
	}

	if set["target"] {
		cfg.TargetPath = *targetFlag
	}
	if set["lenient-patch"] {
		cfg.StrictPatch = !*lenientFlag
	}
	if set["go-out"] {
		cfg.GoOutput = &config.GoOutput{Path: *goOutFlag, Package: *goPkgFlag}
	} else if set["go-package"] && cfg.GoOutput != nil {
		cfg.GoOutput.Package = *goPkgFlag
	}
	if *buildFlag && cfg.Build == nil {
		cfg.Build = &config.Build{}
	}
	if set["fail-on-build"] && cfg.Build != nil {
		cfg.Build.FailOnError = *failOnBuildFlag
	}
	if set["evaluate"] {
		if cfg.Evaluator == nil {
			cfg.Evaluator = &config.Evaluator{}
		}
		cfg.Evaluator.Command = strings.Fields(*evaluateFlag)
	}
	if cfg.Evaluator != nil {
		if len(metrics) > 0 {
			cfg.Evaluator.Metrics = metrics
		}
		if len(modes) > 0 {
			cfg.Evaluator.Modes = modes
		}
	}
	if set["log-level"] {
		cfg.LogLevel = strings.ToLower(*logLevelFlag)
	}
	if set["log-format"] {
		cfg.LogFormat = strings.ToLower(*logFormatFlag)
	}

	inv = &invocation{Config: cfg, Analyze: *analyzeFlag, Watch: *watchFlag}
	if inv.Analyze {
		if inv.Watch {
			return nil, false, &ExitError{Code: 2, Message: "-analyze and -watch cannot be combined"}
		}
		return inv, false, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return inv, false, nil
}
