// Package resilience groups the fault tolerance helpers used around every
// outbound call of a card news run.
//
//   - circuitbreaker: per-dependency breakers for feeds, listing pages,
//     article hosts, event publishers and the history database
//   - retry: exponential backoff with jitter for transient failures
//
// The two compose with retry on the outside, so an open breaker stops the
// remaining attempts of a call:
//
//	items, err := retry.Do(ctx, retry.FeedConfig(), func() ([]entity.FeedItem, error) {
//	    return circuitbreaker.Do(cb, func() ([]entity.FeedItem, error) {
//	        return fetch(ctx, feedURL)
//	    })
//	})
package resilience
