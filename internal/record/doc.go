// Package record defines the persisted description of a media item (the
// MediaRecord), the JSON sidecar codec, and the metadata store that owns
// create/load/update/delete semantics for sidecar files.
//
// Deletion removes the sidecar first so the catalog stops listing the
// item immediately; binary artifacts are deleted best-effort, with
// failures queued on a process-wide Janitor that retries at shutdown.
package record
