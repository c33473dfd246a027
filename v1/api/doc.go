// Package api exposes the repository over HTTP.
//
// Routes (relative to the configured prefix):
//
//	GET  /{table}/items                list every row
//	POST /{table}/items                insert one object, creating the table if absent
//	POST /{table}/bulk_items           insert a list of objects, creating the table if absent
//	POST /{table}/search               vector search
//	POST /{table}/search_text          full-text search
//	POST /{table}/create_fts_index     build a full-text index
//	POST /{table}/create_vector_index  build an ANN index
//	POST /create_table                 create a table from data and/or a schema
//	GET  /healthz                      liveness
//	GET  /readyz                       engine reachability
//
// Request bodies are validated with gjson before the repository is called.
// Malformed input is rejected with 400 and a fixed message; every other
// failure is a 500 whose detail is the error message. Error bodies always
// have the form {"detail": "..."}.
//
// The server runs either as a plain web app on Config.Address or behind an
// Azure Functions custom handler: when FUNCTIONS_CUSTOMHANDLER_PORT is set it
// listens on that port and mounts the routes under /api.
//
// Each request gets an X-Request-ID, a server span (W3C trace context is
// taken from the headers), request count and latency metrics labelled by
// route pattern, and one access log entry. Handler panics become 500s.
package api
