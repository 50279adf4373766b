// Package mirror saves rewritten pages to the local tree and downloads
// their referenced assets through a bounded worker pool. A page is never
// failed by an asset failure; failed assets are simply absent from disk.
package mirror
