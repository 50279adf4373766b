// Package main provides the entry point for the webmirror CLI.
//
// Webmirror downloads web pages into a host/path directory tree,
// rewrites their asset references for local browsing, and downloads
// the referenced assets alongside them.
//
// Usage:
//
//	webmirror run <url> [<url>...]
//	webmirror run --metadata <url>
//
// See --help for all available options.
package main

// main is the entry point for webmirror.
func main() {
	Execute()
}
