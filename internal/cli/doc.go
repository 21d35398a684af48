// Package cli provides the interactive riskdash command-line client.
//
// It shares the session store and services with the dashboard, so a login
// made here is the same credential the web pages see, and the other way
// round. Typical flow: login, pick or create a patient, run a prediction,
// then download its report.
//
// Key features:
//   - Register / Login / Logout / Me
//   - Patient management: list, add, edit, delete
//   - Predictions: guided form with defaults, history, PDF report download
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
