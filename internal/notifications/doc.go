// Package notifications delivers batch events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and degrades to a no-op when no topic is set. Callers depend
// only on the Service interface, so a batch never fails because a
// notification could not be sent.
package notifications
