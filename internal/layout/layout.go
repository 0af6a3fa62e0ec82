package layout

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	// MediaDir holds primary artifacts.
	MediaDir = "media"
	// ImageDir holds preview images.
	ImageDir = "image"
	// ThumbDir holds thumbnails.
	ThumbDir = "thumb"
	// ImportDir is scratch space for package-update backups.
	ImportDir = "import"

	// PreviewExtension is the fixed extension for preview images. Lossy is
	// fine for previews; consumers never branch on the source format.
	PreviewExtension = "jpg"
	// ThumbExtension is the fixed extension for thumbnails. Lossless so the
	// film-strip decoration survives re-encoding.
	ThumbExtension = "png"
	// SidecarExtension is the fixed extension for metadata sidecars.
	SidecarExtension = "json"
)

// Role identifies which artifact of an item a path refers to.
type Role string

const (
	// RoleSidecar is the JSON metadata file.
	RoleSidecar Role = "sidecar"
	// RoleMedia is the primary media artifact.
	RoleMedia Role = "media"
	// RolePreview is the preview image artifact.
	RolePreview Role = "preview"
	// RoleThumb is the thumbnail artifact.
	RoleThumb Role = "thumb"
)

// Layout maps media identities to physical artifact paths under a fixed
// on-disk tree. Path construction is pure; the only I/O is directory
// creation in Initialize.
type Layout struct {
	baseDir string
}

// New creates a Layout rooted at baseDir.
func New(baseDir string) *Layout {
	return &Layout{baseDir: baseDir}
}

// BaseDir returns the library root directory.
func (l *Layout) BaseDir() string {
	return l.baseDir
}

// Initialize creates the library subdirectories if absent. Idempotent.
func (l *Layout) Initialize() error {
	for _, dir := range []string{MediaDir, ImageDir, ThumbDir, ImportDir} {
		path := filepath.Join(l.baseDir, dir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("failed to create library directory %s: %w", path, err)
		}
	}
	return nil
}

// MediaPath returns the primary artifact path for an id with the given
// extension.
func (l *Layout) MediaPath(id uuid.UUID, ext string) string {
	return filepath.Join(l.baseDir, MediaDir, id.String()+"."+ext)
}

// ImagePath returns the preview image path for an id.
func (l *Layout) ImagePath(id uuid.UUID) string {
	return filepath.Join(l.baseDir, ImageDir, id.String()+"."+PreviewExtension)
}

// ThumbPath returns the thumbnail path for an id.
func (l *Layout) ThumbPath(id uuid.UUID) string {
	return filepath.Join(l.baseDir, ThumbDir, id.String()+"."+ThumbExtension)
}

// SidecarPath returns the metadata sidecar path for an id.
func (l *Layout) SidecarPath(id uuid.UUID) string {
	return filepath.Join(l.baseDir, id.String()+"."+SidecarExtension)
}

// ArtifactPaths returns every path an item with the given id and primary
// extension may occupy, sidecar first. Used by delete and rollback.
func (l *Layout) ArtifactPaths(id uuid.UUID, ext string) []string {
	return []string{
		l.SidecarPath(id),
		l.MediaPath(id, ext),
		l.ImagePath(id),
		l.ThumbPath(id),
	}
}

// ImportScratchDir returns the staging directory used to back up an item's
// files during a package update.
func (l *Layout) ImportScratchDir() string {
	return filepath.Join(l.baseDir, ImportDir)
}

// BackupPath returns the scratch location for one artifact of an item
// being updated by a package import.
func (l *Layout) BackupPath(id uuid.UUID, role Role, ext string) string {
	return filepath.Join(l.ImportScratchDir(), id.String()+"."+string(role)+"."+ext)
}

// ExportPath returns the bundle-relative entry name for an artifact. The
// naming scheme mirrors the on-disk tree, rooted at exportRoot instead of
// the library base directory. Always uses forward slashes: these are zip
// entry names, not filesystem paths.
func ExportPath(exportRoot string, id uuid.UUID, role Role, ext string) string {
	switch role {
	case RoleSidecar:
		return exportRoot + "/" + id.String() + "." + SidecarExtension
	case RoleMedia:
		return exportRoot + "/" + MediaDir + "/" + id.String() + "." + ext
	case RolePreview:
		return exportRoot + "/" + ImageDir + "/" + id.String() + "." + PreviewExtension
	case RoleThumb:
		return exportRoot + "/" + ThumbDir + "/" + id.String() + "." + ThumbExtension
	}
	return ""
}
