package main

import (
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitInvalidArgs   = 2
	ExitNoFiles       = 3
	ExitStorageError  = 4
	ExitDatabaseError = 5
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "fetch":
		return runFetch(cmdArgs)
	case "report":
		return runReport(cmdArgs)
	case "ingest":
		return runIngest(cmdArgs)
	case "mirror":
		return runMirror(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: billfetch <command> [options]

Commands:
  fetch     Run the govinfo downloader for each congress in the range, then report
  report    Count downloaded bill text files under the data tree
  ingest    Parse BILLSTATUS XML files and load them into Postgres
  mirror    Copy downloaded bill text files to object storage

Run 'billfetch <command> -h' for command-specific help.`)
}
