// Package http contains the HTTP transport layer: chi handlers for
// dataset uploads, filters, summary KPIs, chart specs and exports.
// Handlers translate pipeline errors into RFC 7807 problem responses
// and never reach into the dataprocessing package beyond its errors.
package http
