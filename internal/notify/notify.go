// Package notify hands reminder and coach messages off to the push
// delivery provider. The scans and services never talk to the provider
// directly; they pass (target, title, message, url) through the Notifier.
package notify

import "context"

// Notification is one push message.
type Notification struct {
	Title   string
	Message string
	URL     string
}

// Notifier delivers push notifications. Delivery is best-effort and
// at-most-once; callers treat a returned error as "this one failed" and
// move on.
type Notifier interface {
	// NotifyUser targets a single user by external identifier.
	NotifyUser(ctx context.Context, userID string, n Notification) error
	// NotifyRole targets every subscriber tagged with a role segment.
	NotifyRole(ctx context.Context, role string, n Notification) error
	// NotifyAll targets all subscribed devices.
	NotifyAll(ctx context.Context, n Notification) error
}
