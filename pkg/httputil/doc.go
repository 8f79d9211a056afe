// Package httputil provides the HTTP plumbing shared by the sheet loader and
// the edit uploader.
//
// # Overview
//
//   - [Client]: GET with caching and retry, POST for edit requests
//   - [Backoff]: Automatic retry with exponential backoff
//
// # Caching
//
// [Client.GetBytes] stores downloaded sheet exports in a [cache.Cache]
// under the key produced by [cache.Keyer.SheetKey]. The CLI uses a file
// cache (~/.cache/familytree/), the server a Redis cache.
//
//	c, _ := cache.NewFileCache(dir)
//	client := httputil.NewClient(c, time.Hour, nil)
//	csv, err := client.GetBytes(ctx, exportURL, false)
//
// # Retry
//
// Network errors, 429 and 5xx responses are wrapped in [RetryableError]
// and retried with [DefaultBackoff] (3 attempts, 1 second initial delay,
// doubling, honoring Retry-After). Uploads are never retried.
//
// # Uploads
//
// [Client.PostText] marshals the payload as JSON but sends it with
// Content-Type text/plain;charset=utf-8, the form the Apps Script
// endpoint expects.
package httputil
