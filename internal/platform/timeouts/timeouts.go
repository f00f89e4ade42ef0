// Package timeouts defines the deadlines shared by headstate commands.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Request caps the time a single page composition may take.
const Request = 10 * time.Second

// Shutdown limits how long servers and exporters may drain
// during graceful shutdown.
const Shutdown = 5 * time.Second
