// Package domain defines the core business entities and errors:
// print requests, jobs, and the job status lifecycle.
package domain
