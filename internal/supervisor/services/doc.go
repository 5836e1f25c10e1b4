// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package services provides suture.Service wrappers for Shelfwise components.

# Available Services

HTTP Server (HTTPServerService):
  - Runs *http.Server and drains in-flight requests on shutdown
  - Returns listener errors so the supervisor restarts it

Model Reload (ModelReloadService):
  - Watches the model directory with fsnotify and rescans on a ticker
  - Throttles event bursts with golang.org/x/time/rate
  - Swaps newer artifacts into the engine; a corrupt artifact leaves the
    current model serving and is not retried

Scheduled Retraining (RetrainService):
  - Runs the offline trainer on an interval, optionally at startup
  - Records run outcomes in Prometheus and notifies the reloader

# Error Handling

Return values determine supervisor behavior:

	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

Reload and training failures are logged and retried on the next tick
rather than returned, because the model already loaded stays valid.
*/
package services
