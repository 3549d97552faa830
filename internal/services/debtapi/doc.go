// Package debtapi is the HTTP client for the technical-debt analytics
// backend.
//
// It covers the three endpoints the upload pipeline consumes: the ticket and
// usage CSV upload endpoints (multipart POST) and the last-upload-date lookup
// used for overwrite-conflict detection. Responses are decoded into typed
// results; an HTTP 409 on usage uploads is surfaced as a ConflictError
// carrying the backend's overwrite metadata.
package debtapi
