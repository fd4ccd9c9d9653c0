// Package notifications implements the in-memory real-time notification hub
// for businesses in the dispatch system.
//
// The hub keeps one room per business. A room holds the business's live
// connections, keyed by user, and a bounded FIFO history of recent
// notifications. Connecting replaces any previous connection of the same
// user, acknowledges the client, and replays the most recent history
// entries. Broadcasting appends to the history first, so a notification is
// retained even when nobody is connected.
//
// Delivery is best effort: a connection that fails a write is closed and
// dropped, and nothing is retried. History lives only in process memory and
// is lost on restart.
package notifications
