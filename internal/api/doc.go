// Package api hosts the HTTP server, middleware, and JSON handlers. Routes:
//   - GET / serves the bundled single-page frontend.
//   - POST /api/extract runs one extraction and returns the record.
//   - GET and DELETE /api/history read and clear the stored history.
//   - GET /api/health reports liveness and the configured version.
//   - GET /metrics for Prometheus scraping.
package api
