// Package api implements the HTTP API for voice enrollment and login.
//
// All routes are mounted under /api. Enrollment and login accept multipart
// form uploads carrying the recorded audio; responses use the service's
// standard envelope and error format.
package api
