// Package bundle implements bulk import and export of catalog items as
// self-describing zip bundles, plus raw single-artifact transfer.
//
// A bundle carries, per item, the sidecar JSON, the primary media
// artifact, the thumbnail, and (for video) the preview image. Import is
// two-phase: discovery parses every sidecar-shaped entry into candidates,
// then each candidate is applied transactionally under a per-id lock, so
// all of its files land or none do. Updating an existing item first moves
// its current files into the import scratch directory and restores them
// if the update fails; when restoration itself fails, the item's files
// are deleted entirely rather than left half old, half new.
package bundle
