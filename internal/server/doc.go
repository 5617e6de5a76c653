// Package server runs the envelope server's HTTP listener and shuts it down
// gracefully on SIGTERM, SIGINT or SIGQUIT.
package server
