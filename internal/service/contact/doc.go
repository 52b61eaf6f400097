// Package contact implements the contact-form notification pipeline.
//
// A submission is validated, enriched with client context (device,
// location), formatted and delivered to the messaging bot, then optionally
// persisted and mirrored to the analytics sink. Only geolocation failures
// are absorbed; delivery and persistence failures are returned to the
// caller. Nothing is retried.
//
// The service depends on the notify.Dispatcher, storage.Store and
// tracking.Publisher interfaces. It never imports net/http directly.
package contact
