// Command catalogctl provides a CLI for operating a media catalog
// library directly, without the HTTP server.
//
// It supports the following operations:
//   - import: run files through the full import pipeline
//   - export: write one item as a self-describing zip package
//   - restore: apply a zip package to the library
//   - list: enumerate catalog items
//   - delete: remove an item and its artifacts
//
// Usage:
//
//	catalogctl <command> [args]
//
// The library location comes from LIBRARY_DIR (default /library), and
// the import pipeline reads the same encoder environment variables as
// the server.
package main
