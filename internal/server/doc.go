// Package server exposes the merge engine over HTTP.
//
// Routes:
//
//	POST /gerar-excel/  JSON {"dados": [[...], ...]} -> one submission
//	POST /upload/       multipart "file" saved verbatim to the upload dir
//	GET  /healthz       liveness
//	GET  /metrics       Prometheus metrics
//
// Every origin is allowed, matching the policy of the service this replaces.
// Submissions are processed synchronously inside the request.
package server
