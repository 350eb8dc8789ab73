// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between external clients
// and the credential, storage and job services, translating HTTP concerns
// to their operations.
package api
