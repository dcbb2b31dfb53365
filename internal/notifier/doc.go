// Package notifier posts text messages to a GroupMe chat through a bot webhook.
//
// A post either succeeds (HTTP 202) or fails with ErrInvalidCredential. Failed
// posts are never retried; the caller decides what to do with the error.
package notifier
