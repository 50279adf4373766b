// Package pathmap maps URLs to local filesystem paths for the mirror
// tree. A page at https://host/a/b/page.html maps to the directory
// <base>/host/a/b, and each asset maps to a file under the directory
// derived the same way from its own URL.
package pathmap
