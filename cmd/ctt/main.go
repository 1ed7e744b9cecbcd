// Command ctt runs contract verification pipelines from the command line.
// The engine itself owns no CLI; this is the thin surrounding tooling that
// loads manifests, wires the runner's collaborators from the environment,
// and renders reports.
package main

import (
	"fmt"
	"io"
	"os"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run dispatches subcommands; split out so tests can drive the CLI.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stderr)
		return 2
	}

	switch args[1] {
	case "verify":
		return runVerifyCmd(args[2:], stdout, stderr)
	case "catalog":
		return runCatalogCmd(args[2:], stdout, stderr)
	case "version":
		fmt.Fprintln(stdout, "ctt "+Version)
		return 0
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ctt <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  verify   -manifest <file> [-json]        run the verification pipeline")
	fmt.Fprintln(w, "  catalog  [-file <file>] [-guard G] [-category C] [-expr CEL] [-json]")
	fmt.Fprintln(w, "           inspect and filter operator catalogs")
	fmt.Fprintln(w, "  version  print the build version")
}
