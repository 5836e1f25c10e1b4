// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package supervisor provides process supervision for Shelfwise using suture v4.

The tree keeps model maintenance and request serving apart so a failing
background job never takes the API down:

	RootSupervisor ("shelfwise")
	├── DataSupervisor ("data-layer")
	│   ├── ModelReloadService
	│   └── RetrainService (if training.schedule.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A service that keeps crashing is restarted with backoff inside its own
layer. While the data layer backs off, the engine keeps serving the model
it already holds.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(reloader)
	tree.AddAPIService(services.NewHTTPServerService(server, 15*time.Second, logger))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

# Configuration

TreeConfig controls restart behavior. Zero fields take suture's defaults:
5 failures before backoff, 30 second decay, 15 second backoff and a
10 second shutdown timeout per service.

# Service Contract

Services implement suture.Service. Returning an error restarts the service;
returning ctx.Err() after cancellation is a normal stop. Supervisor events
are logged through sutureslog into the process logger.

If a service ignores cancellation, UnstoppedServiceReport lists it after
shutdown.
*/
package supervisor
