// Package config defines configuration structures for the billfetch CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (BILLFETCH_ prefix, plus DATABASE_URL)
//   - YAML configuration file
//   - A .env file under the project root (DATABASE_URL)
//
// Precedence is flags over environment over file over defaults; Merge
// implements the overlay.
package config
