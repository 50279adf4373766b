// Package console provides a mutex-guarded console handle for status
// output from concurrent workers. Every line is written atomically so
// output from parallel page and asset downloads never interleaves mid-line.
package console
