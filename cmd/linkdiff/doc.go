// Package main hosts the linkdiff entrypoint.
//
// linkdiff fetches a web page, extracts and normalizes its hyperlinks, and diffs
// them against the previous extraction of the same page kept in a small JSON
// history file.
//
// Architecture overview:
//   - HTTP API: internal/api.Server serves the bundled frontend, POST /api/extract,
//     GET and DELETE /api/history, GET /api/health and GET /metrics.
//   - Extraction: internal/extraction.Service validates the URL, fetches it through the
//     Colly-based fetcher (optionally promoting script-heavy pages to a headless Chromedp
//     render), extracts links with internal/links, diffs against internal/history and
//     persists the new record.
//   - Configuration & plumbing: Viper populates config from a YAML file and LINKDIFF_*
//     environment variables (a .env file is loaded first); zap provides structured
//     logging; Prometheus metrics are exported at /metrics.
//
// Commands:
//   - linkdiff [port] or linkdiff serve [port] runs the server. The port comes from the
//     argument, then PORT, then LINKDIFF_SERVER_PORT or the config file, then 5000.
//   - linkdiff extract <url> runs one extraction and prints the record as JSON.
//   - linkdiff history prints the stored history; linkdiff history clear removes it.
package main
