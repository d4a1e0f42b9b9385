// Package logger provides leveled CLI logging for docuvault commands.
//
// Output is controlled by two flags:
//
//   - --verbose: Shows info and warning messages
//   - --debug: Shows all messages including debug details
//
// Without flags, only critical warnings and errors are shown.
//
// # Log Methods
//
//	Logger.Infof()            // Shown with --verbose or --debug
//	Logger.Debugf()           // Shown only with --debug
//	Logger.Warnf()            // Shown with --verbose or --debug
//	Logger.WarnfAlways()      // Always shown (critical warnings)
//	Logger.Errorf()           // Always shown
//	Logger.ErrorfAndReturn()  // Logs, then returns the error for wrapping
//
// Storage code logs through logrus. Logrus returns a logger whose level
// follows the same flags so badger and the blob store stay quiet by default.
package logger
