// Command keyforge-log is a tool for viewing and exporting KeyForge
// capture files.
//
// Capture files are created by the pipeline's capture sink (see the
// logging.capture_path config setting) and hold CBOR-encoded records.
//
// Usage:
//
//	keyforge-log <command> [flags] <file.kclog>
//
// Commands:
//
//	view     View a capture file in human-readable format
//	export   Export a capture file to JSONL or CSV
//
// Examples:
//
//	# View all records
//	keyforge-log view server.kclog
//
//	# View only one session's records at warn or above
//	keyforge-log view -session 2f1c... -min-level warn server.kclog
//
//	# Export to JSONL
//	keyforge-log export -format jsonl server.kclog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/SouradipPatra7904/KeyForge/cmd/keyforge-log/commands"
	"github.com/SouradipPatra7904/KeyForge/pkg/logging"
)

const usage = `keyforge-log - KeyForge capture file analyzer

Usage:
  keyforge-log <command> [flags] <file.kclog>

Commands:
  view     View a capture file in human-readable format
  export   Export a capture file to JSONL or CSV

Use "keyforge-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func parseFilter(session, minLevel string) (logging.Filter, error) {
	filter := logging.Filter{SessionID: session}
	if minLevel != "" {
		level, err := logging.ParseLevel(minLevel)
		if err != nil {
			return logging.Filter{}, err
		}
		filter.MinLevel = &level
	}
	return filter, nil
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	session := fs.String("session", "", "filter by session ID")
	minLevel := fs.String("min-level", "", "filter out records below this level")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "view requires exactly one capture file")
		os.Exit(1)
	}

	filter, err := parseFilter(*session, *minLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "view: %v\n", err)
		os.Exit(1)
	}

	if err := commands.RunView(fs.Arg(0), filter, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "view: %v\n", err)
		os.Exit(1)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "jsonl", "output format: jsonl or csv")
	output := fs.String("o", "", "output file (default standard output)")
	session := fs.String("session", "", "filter by session ID")
	minLevel := fs.String("min-level", "", "filter out records below this level")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "export requires exactly one capture file")
		os.Exit(1)
	}

	filter, err := parseFilter(*session, *minLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		os.Exit(1)
	}

	if err := commands.RunExport(fs.Arg(0), *format, *output, filter); err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		os.Exit(1)
	}
}
