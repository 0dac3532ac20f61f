package scan

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/hello7893/romdex/internal/checksum"
)

// EntryInfo describes one archive entry without extracting it.
type EntryInfo struct {
	Method           uint16 // zip storage method
	CompressedSize   uint64
	UncompressedSize uint64
}

// EntryFunc inspects one archive entry. It receives the entry name, the
// recognized-extension list, a size descriptor, the entry's stored CRC-32,
// and the opaque userdata the identifier was built with. Returning false
// stops traversal of the remaining entries.
type EntryFunc func(name string, validExts []string, info EntryInfo, crc uint32, userdata any) bool

// ContentIdentifier processes one candidate path. Implemented by
// *Identifier; sessions only need this surface.
type ContentIdentifier interface {
	Identify(path string) (uint32, bool)
}

// Identifier determines what a candidate file is: archives are inspected
// entry by entry via the callback, plain files are read whole and
// checksummed.
type Identifier struct {
	exts     []string
	entryFn  EntryFunc
	userdata any
	logger   *slog.Logger
}

// NewIdentifier creates an identifier for the recognized extensions. A nil
// entryFn installs the default inspection callback, which logs each
// entry's stored checksum and accepts it unconditionally — it performs no
// verification.
func NewIdentifier(exts []string, entryFn EntryFunc, userdata any, logger *slog.Logger) *Identifier {
	id := &Identifier{
		exts:     exts,
		entryFn:  entryFn,
		userdata: userdata,
		logger:   logger.With("component", "identifier"),
	}
	if id.entryFn == nil {
		id.entryFn = id.logEntry
	}
	return id
}

// Identify processes one path. For archives it returns (0, true) after
// entry traversal; for plain files it returns the content CRC-32. An
// unreadable or empty file reports (0, false) and is otherwise ignored:
// scanning continues, nothing is propagated.
func (id *Identifier) Identify(path string) (uint32, bool) {
	if isArchive(path) {
		return 0, id.identifyArchive(path)
	}
	return id.identifyFile(path)
}

func isArchive(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zip")
}

func (id *Identifier) identifyArchive(path string) bool {
	id.logger.Info("inspecting archive", "path", path)

	r, err := zip.OpenReader(path)
	if err != nil {
		id.logger.Warn("could not process archive", "path", path, "error", err)
		return false
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		info := EntryInfo{
			Method:           f.Method,
			CompressedSize:   f.CompressedSize64,
			UncompressedSize: f.UncompressedSize64,
		}
		if !id.entryFn(f.Name, id.exts, info, f.CRC32, id.userdata) {
			break
		}
	}
	return true
}

func (id *Identifier) identifyFile(path string) (uint32, bool) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the scanned content root
	if err != nil {
		id.logger.Debug("skipping unreadable file", "path", path, "error", err)
		return 0, false
	}
	if len(data) == 0 {
		return 0, false
	}

	crc := checksum.CRC32(data)
	id.logger.Info("file identified",
		"path", path,
		"crc32", fmt.Sprintf("%08X", crc),
		"blake3", checksum.ContentAddress(data))
	return crc, true
}

// logEntry is the default archive inspection callback. It only logs the
// entry's stored checksum and accepts; there is no verification against
// the entry content.
func (id *Identifier) logEntry(name string, _ []string, _ EntryInfo, crc uint32, _ any) bool {
	id.logger.Info("archive entry", "name", name, "crc32", fmt.Sprintf("%08X", crc))
	return true
}
