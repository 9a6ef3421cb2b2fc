// Package app assembles the festival dashboard: configuration,
// logging, OpenTelemetry, the session store, the WebSocket hub and
// the chi router, with graceful startup and shutdown.
package app
