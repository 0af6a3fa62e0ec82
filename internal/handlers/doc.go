// Package handlers implements the catalog's HTTP API: listing and
// fetching records, multipart upload into the import pipeline, deletion,
// tag updates, raw artifact download, and zip package import/export.
package handlers
