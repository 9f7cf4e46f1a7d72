// Package server holds the HTTP control server configuration.
//
// The serve command exposes a small API over the running pipeline (status,
// reload, unload); this package defines its settings. The routes themselves
// live with the command that builds the Fiber app.
package server
