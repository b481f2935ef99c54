// Package api handles incoming HTTP requests for the label print service:
// job submission, status polling and streaming, PDF download, job listing,
// template discovery, and the health endpoint. It acts as an adapter between
// external clients and the job manager, translating HTTP concerns to
// scheduling operations and mapping internal errors to status codes.
package api
