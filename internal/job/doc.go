// Package job is the asynchronous core of the service: the submission queue,
// the in-memory job registry, the worker pool that drives PDF generation,
// and the reclaimer that evicts expired job records and output files.
package job
