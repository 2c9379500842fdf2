// Package api defines the request and response messages of the ourledger.v1
// RPC services. Messages travel as JSON; field names are snake_case on the
// wire. Amounts are integers in the minor currency unit.
//
// Handlers and clients live in package apiconnect.
package api
