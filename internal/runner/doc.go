// Package runner invokes the external govinfo bulk-data downloader.
package runner
