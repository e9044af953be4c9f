// Command addrscope inspects, compares and exports bulk address lists from
// the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bcnelson/addrscope/internal/config"
)

const usage = `usage: addrscope <command> [flags] [entries...]

Commands:
  split      split raw input into deduplicated entries
  classify   print the entry type of each entry
  compare    compare two entries
  analyze    inspect a batch and print summary, outliers and insights
  export     inspect a batch and write it as csv, json or yaml
  watch      re-run analyze whenever a file changes

Input is read from -f, from the remaining arguments, or from stdin.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cmds := map[string]func(context.Context, *cli, []string) error{
		"split":    runSplit,
		"classify": runClassify,
		"compare":  runCompare,
		"analyze":  runAnalyze,
		"export":   runExport,
		"watch":    runWatch,
	}

	name := args[0]
	if name == "-h" || name == "-help" || name == "--help" || name == "help" {
		fmt.Fprint(stdout, usage)
		return 0
	}
	cmd, ok := cmds[name]
	if !ok {
		fmt.Fprintf(stderr, "addrscope: unknown command %q\n\n%s", name, usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "addrscope: loading config: %v\n", err)
		return 1
	}

	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr, cfg: cfg}
	if err := cmd(ctx, c, args[1:]); err != nil {
		if err == errUsage {
			return 2
		}
		fmt.Fprintf(stderr, "addrscope %s: %v\n", name, err)
		return 1
	}
	return 0
}
