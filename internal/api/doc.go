// Package api serves the resource-owner facing authorize pages of OKAPI
// together with health and metrics endpoints.
package api
