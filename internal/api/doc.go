// Package api is the HTTP boundary of the notification service.
//
// Every path except GET /health runs through the same method gate:
// OPTIONS answers the CORS preflight without touching the pipeline, POST
// submits a contact form, anything else is 405. All responses carry the
// permissive CORS headers.
package api
