// Package notify delivers best-effort countdown notifications to a
// Telegram chat. Delivery failures are logged and never surfaced to the
// countdown path.
package notify
