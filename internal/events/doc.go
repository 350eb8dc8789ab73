// Package events carries job lifecycle notifications from the worker pool to
// interested listeners (WebSocket sessions, the AMQP publisher) without the
// task package knowing who consumes them.
//
// The primary components are:
// - JobEvent: a single job state transition
// - EventHandler: interface for components that react to events
// - EventEmitter: interface for components that publish events
package events
