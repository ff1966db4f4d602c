// Package progress provides progress reporting for batch file operations.
//
// The reporter prints a single updating line to stderr with completion
// counts, processing rate, and ETA, then a final summary line on Stop.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{
//	    Total: len(files),
//	    Label: "Ingesting",
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	// Update as files complete
//	reporter.FileCompleted()
package progress
