package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/karlandr1/beryl-go/internal/value"
	"github.com/karlandr1/beryl-go/pkg/beryl"
	"github.com/spf13/cobra"
)

// bootstrapEnvVar names the environment variable that may designate a
// script to run before argument processing (spec §6 CLI surface).
const bootstrapEnvVar = "BERYL_BOOTSTRAP"

var bootstrapFlag string

func init() {
	rootCmd.Args = cobra.ArbitraryArgs
	rootCmd.RunE = runRoot
	rootCmd.PersistentFlags().StringVar(&bootstrapFlag, "bootstrap", "", "run this script before the main script/REPL (overrides "+bootstrapEnvVar+")")
}

// runRoot implements the reference CLI surface: `beryl [script [args...]]`,
// REPL on no script argument, bootstrap script run first either way.
func runRoot(_ *cobra.Command, args []string) error {
	engine := beryl.New()
	engine.SetIO(func(s string) { fmt.Print(s) })

	if err := runBootstrap(engine, args); err != nil {
		exitWithError("%v", err)
	}

	if len(args) == 0 {
		runREPL(engine)
		return nil
	}

	exitCode := runFile(engine, args[0], args[1:])
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}

// runBootstrap runs the script named by --bootstrap or BERYL_BOOTSTRAP, if
// any, binding the full argv tail to `argv` first (spec §6).
func runBootstrap(engine *beryl.Engine, argv []string) error {
	bindArgv(engine, argv)

	path := bootstrapFlag
	if path == "" {
		path = os.Getenv(bootstrapEnvVar)
	}
	if path == "" {
		return nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read bootstrap script %s: %w", path, err)
	}
	if _, err := engine.EvalWithDisposition(string(src), beryl.Print); err != nil {
		return fmt.Errorf("bootstrap script %s failed: %w", path, err)
	}
	return nil
}

// bindArgv binds the script's argument list to the global name `argv` as
// an Array of strings (spec §6).
func bindArgv(engine *beryl.Engine, argv []string) {
	items := make([]value.Value, len(argv))
	for i, a := range argv {
		items[i] = value.NewString(a)
	}
	engine.SetVar("argv", value.NewArray(items))
}

// runFile reads and evaluates a script file, returning the process exit
// code: the script's last value when numeric, 0 on clean non-numeric exit,
// nonzero on error (spec §6).
func runFile(engine *beryl.Engine, path string, rest []string) int {
	bindArgv(engine, append([]string{path}, rest...))

	src, err := os.ReadFile(path)
	if err != nil {
		exitWithError("failed to read file %s: %v", path, err)
	}

	res, err := engine.EvalWithDisposition(string(src), beryl.Print)
	if err != nil {
		return 1
	}
	return exitCodeFor(res)
}

// exitCodeFor maps a script's last value to a process exit code: the
// integer itself when numeric, 0 otherwise (spec §6).
func exitCodeFor(res value.Value) int {
	if res.Kind() == value.Number {
		return int(res.AsNumber())
	}
	return 0
}

// runREPL reads lines from standard input and evaluates each, printing the
// resulting value, until EOF (spec §6: "With no args, enters a REPL
// reading lines from standard input and evaluating each").
func runREPL(engine *beryl.Engine) {
	cfg := loadReplConfig()
	prompt := cfg.Prompt

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := scanner.Text()
		switch line {
		case "":
			continue
		case "vars":
			printVars(engine)
			continue
		case "exit", "quit":
			return
		}

		res, err := engine.EvalWithDisposition(line, beryl.Print)
		if err != nil {
			continue
		}
		fmt.Println(value.Display(res))
	}
}
