package rangedl

import "github.com/guiyumin/rangedl/internal/archive"

// ArchiveFormat names an archive/codec variant a Download may be configured
// with. It is a re-export of internal/archive.Format so callers never import
// an internal package directly.
type ArchiveFormat = archive.Format

const (
	Tar    = archive.Tar
	TarBz2 = archive.TarBz2
	TarGz  = archive.TarGz
	TarXz  = archive.TarXz
	TarZst = archive.TarZst
	Zip    = archive.Zip
	Gz     = archive.Gz
	Bz2    = archive.Bz2
	Xz     = archive.Xz
	Zst    = archive.Zst
)
