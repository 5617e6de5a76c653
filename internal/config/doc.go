// Package config provides configuration loading, merging, and validation
// facilities for the journal client and the envelope server.
//
// Configuration is assembled from multiple sources. For every field the first
// source that sets a non-zero value wins:
//  1. Command-line flags (cobra flags on the client, stdlib flags on the server)
//  2. Environment variables
//  3. JSON config file
//  4. Built-in defaults
//
// On the server the environment is read before the flags, as it always was.
//
// The main entry points are [GetServerConfig] for the envelope server and
// [GetClientConfig] for the client.
package config
