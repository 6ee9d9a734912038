// Package errors provides error handling conventions for the snapback CLI.
//
// Wrapping helpers are forwarded from github.com/cockroachdb/errors so that
// packages import a single errors package. On top of those the package
// defines sentinel errors for the fatal conditions of a backup run, exit
// code constants, and [ExitError], which carries an exit code and an
// optional suggestion up to main:
//
//	if err := commands.Execute(); err != nil {
//	    os.Exit(errors.ExitCode(err))
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): backup or configuration update finished
//   - ExitUser (1): bad source, unresolvable target, invalid usage
//   - ExitSystem (2): backup root or config file could not be written
//   - ExitPartial (3): the backup ran but some entries failed to copy
package errors
