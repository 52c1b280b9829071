// Package app provides application initialization and lifecycle management
// for the Retail Pulse dashboard. It wires configuration, logging, the
// dataset cache, the analytics and chart services, the HTTP middleware chain
// and the router together, and owns startup and graceful shutdown.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from defaults, config file and environment
//	2. Initialize the JSON logger and Prometheus metrics
//	3. Resolve and create the data, charts, reports and logs directories
//	4. Build the dataset cache and the services reading from it
//	5. Set up HTTP handlers and middleware
//	6. Configure the HTTP server
//
// # Usage
//
// The main entry point is typically:
//
//	app, err := app.NewApplication(frontendFS)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT or SIGTERM, then shuts the server down within the
// configured shutdown timeout so in-flight requests finish.
//
// # Background Work
//
// When analytics auto-load is enabled, Start warms the dataset snapshot in
// the background so the first dashboard query does not pay the load. Start
// also opens the local browser once the health endpoint answers, since the
// dashboard is a local-first tool.
package app
