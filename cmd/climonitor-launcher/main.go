// Command climonitor-launcher wraps an AI coding tool in a PTY and
// reports its session state to a climonitor aggregator.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kizaaku/climonitor/launcher"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run implements the launcher CLI's flag parsing and the
// `launcher [flags] TOOL [TOOL_ARGS...]` passthrough boundary:
// everything after the first non-flag argument belongs to the wrapped
// tool and must not be touched by flag.Parse.
func run(argv []string) int {
	flagArgv, toolArgv := splitAtTool(argv)

	fs := flag.NewFlagSet("climonitor-launcher", flag.ContinueOnError)
	verbose := fs.Bool("verbose", false, "enable verbose trace logging")
	logFile := fs.String("log-file", "", "path to append raw PTY output to")
	configPath := fs.String("config", "", "path to a climonitor config.toml")
	connect := fs.String("connect", "", "aggregator endpoint override (unix socket path or host:port)")
	project := fs.String("project", "", "project name reported to the aggregator (default: working directory basename)")
	if err := fs.Parse(flagArgv); err != nil {
		return 2
	}

	if len(toolArgv) == 0 {
		fmt.Fprintln(os.Stderr, "usage: climonitor-launcher [flags] TOOL [TOOL_ARGS...]")
		return 2
	}
	tool, toolArgs := toolArgv[0], toolArgv[1:]

	workingDir, err := os.Getwd()
	if err != nil {
		log.Fatalf("climonitor-launcher: %v", err)
	}

	exitCode, err := launcher.Run(context.Background(), tool, toolArgs, workingDir, launcher.Options{
		Verbose:         *verbose,
		LogFilePath:     *logFile,
		ConfigPath:      *configPath,
		ConnectEndpoint: *connect,
		ProjectName:     *project,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "climonitor-launcher: %v\n", err)
	}
	return exitCode
}

// splitAtTool finds the first argument not belonging to a recognized
// launcher flag and splits argv there: everything before is parsed by
// flag.FlagSet, everything from that point on (the tool name and its
// own arguments) is passed through untouched.
func splitAtTool(argv []string) (flagArgv, toolArgv []string) {
	boolFlags := map[string]bool{"verbose": true}
	valueFlags := map[string]bool{"log-file": true, "config": true, "connect": true, "project": true}

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		if arg == "--" {
			return argv[:i], argv[i+1:]
		}
		if len(arg) == 0 || arg[0] != '-' {
			return argv[:i], argv[i:]
		}
		name := trimFlagDashes(arg)
		if eq := indexByte(name, '='); eq >= 0 {
			name = name[:eq]
			continue
		}
		if valueFlags[name] {
			i++ // consume the flag's separate value argument
			continue
		}
		if !boolFlags[name] {
			// Unrecognized flag: stop splitting here and let flag.Parse
			// report the error.
			return argv[:i+1], argv[i+1:]
		}
	}
	return argv, nil
}

func trimFlagDashes(s string) string {
	for len(s) > 0 && s[0] == '-' {
		s = s[1:]
	}
	return s
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
