// Package server hosts the Fiber HTTP service that exposes data sets, the
// cache listing and metrics. NewApp builds the application with request ID
// and access-log middleware; the routes subpackage attaches the endpoints.
package server
