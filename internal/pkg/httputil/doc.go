// Package httputil provides the JSON response envelope and attachment
// helpers shared by all API handlers.
package httputil
