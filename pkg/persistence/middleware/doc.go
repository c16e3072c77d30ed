// Package middleware provides RecordStore decorators.
//
// The encryption middleware seals session records at rest so that requester
// emails and form answers never reach Redis or SQLite in plain text.
package middleware
