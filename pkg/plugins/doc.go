// Package plugins dispatches build lifecycle events to registered callbacks.
//
// A Host is created by the caller and handed to the pipeline; nothing is
// registered globally. Callbacks for an event run in registration order and
// the emitting phase waits for all of them. A failing or panicking callback
// is reported without stopping the others.
package plugins
