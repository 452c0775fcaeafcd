// Package logger provides leveled logging for secrets-manager commands.
//
// Verbosity is controlled by two global flags:
//
//   - --verbose: shows info messages (one line per exported/imported file)
//   - --debug: shows info and debug messages
//
// Warnings and errors are always written to stderr.
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("exporting '%s'... ok", rel)
//
// Out and Err can be replaced in tests to capture output. Values that must
// never appear in logs are wrapped in Secret.
package logger
