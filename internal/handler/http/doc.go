// Package http is the REST transport of the envelope server.
//
// Routes are scoped by journal: /api/journals/{journalID}/envelopes. The
// server stores envelopes it cannot decrypt, so handlers only move opaque
// records between the wire and [service.EnvelopeService]. Request tracing,
// access logging, compression, body limits and the optional content hash
// check run as middleware before a handler is reached.
package http
