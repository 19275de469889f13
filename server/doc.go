// Package server provides the HTTP server for the voice authentication
// service: a Gin engine behind an h2c-capable net/http server, with a
// standard middleware stack (recovery, request ID, CORS, body size limit,
// request logging) and built-in health, info, and version endpoints.
package server
