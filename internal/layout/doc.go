// Package layout maps media item identities to their physical artifact
// paths in the library tree:
//
//	<base>/<id>.json        metadata sidecar
//	<base>/media/<id>.<ext> primary artifact
//	<base>/image/<id>.jpg   preview image
//	<base>/thumb/<id>.png   thumbnail
//	<base>/import/          scratch space for package-update backups
//
// Artifact file names are always <id>.<extension> with extensions fixed by
// this package, never user-controlled.
package layout
