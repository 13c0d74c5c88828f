package build

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/containerd/errdefs"
	"github.com/cruciblehq/uberjni/internal"
	"github.com/cruciblehq/uberjni/internal/merge"
	"github.com/cruciblehq/uberjni/internal/paths"
	"github.com/klauspost/compress/zip"
	"github.com/opencontainers/go-digest"
)

// Name of the JAR manifest entry, always written first.
const jarManifest = "META-INF/MANIFEST.MF"

// Timestamp stamped on every entry so identical inputs give identical
// archives. Zip cannot represent times before 1980.
var entryTime = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// A file or directory copied into an archive.
type content struct {
	from string // Path on disk.
	into string // Directory inside the archive.
}

// What an archive step writes.
type archiveSpec struct {
	output   string                 // Archive file.
	contents []content              // Fixed contents, written before mappings.
	mappings func() []merge.Mapping // Binary mappings, read when the step runs.
}

// An entry written to an archive.
type Entry struct {
	Name   string        // Slash-separated path inside the archive.
	Size   int64         // Uncompressed size.
	Digest digest.Digest // Digest of the uncompressed content.
}

// Describes a written archive.
type ArchiveResult struct {
	Path    string        // Archive file.
	Digest  digest.Digest // Digest of the archive file.
	Entries []Entry       // Regular-file entries in write order.
}

// Writes an archive.
//
// The archive is written to a temporary file next to the output and renamed
// into place, so a failed write never leaves a truncated archive behind.
// Mapped files are opened now, not when the mapping was registered, so the
// archive holds whatever the producing steps wrote last.
func writeArchive(spec *archiveSpec) (*ArchiveResult, error) {
	if err := os.MkdirAll(filepath.Dir(spec.output), paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(spec.output), ".uberjni-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}
	defer os.Remove(tmp.Name())

	digester := digest.Canonical.Digester()
	w := newArchiveWriter(io.MultiWriter(tmp, digester.Hash()))

	err = w.write(spec)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArchive, spec.output, err)
	}

	if err := os.Chmod(tmp.Name(), paths.DefaultFileMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}
	if err := os.Rename(tmp.Name(), spec.output); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	slog.Debug("archive written", "path", spec.output, "entries", len(w.entries), "digest", digester.Digest())

	return &ArchiveResult{
		Path:    spec.output,
		Digest:  digester.Digest(),
		Entries: w.entries,
	}, nil
}

// Accumulates entries into a zip stream.
type archiveWriter struct {
	zw      *zip.Writer
	seen    map[string]bool // Entry names already written, files and directories.
	entries []Entry
}

func newArchiveWriter(out io.Writer) *archiveWriter {
	return &archiveWriter{
		zw:   zip.NewWriter(out),
		seen: make(map[string]bool),
	}
}

// Writes the manifest, the fixed contents, and the mapped binaries, then
// closes the zip stream.
func (w *archiveWriter) write(spec *archiveSpec) error {
	if err := w.addManifest(); err != nil {
		return err
	}

	for _, c := range spec.contents {
		if err := w.addPath(c.from, c.into); err != nil {
			return err
		}
	}

	if spec.mappings != nil {
		for _, m := range spec.mappings() {
			for _, file := range m.Source.Files() {
				if err := w.addPath(file, m.Into); err != nil {
					return err
				}
			}
		}
	}

	return w.zw.Close()
}

func (w *archiveWriter) addManifest() error {
	body := "Manifest-Version: 1.0\r\nCreated-By: " + internal.Name + " " + internal.VersionString() + "\r\n\r\n"
	return w.addBytes(jarManifest, []byte(body))
}

// Adds a file as into/<base name>, or a directory tree under into.
func (w *archiveWriter) addPath(hostPath, into string) error {
	info, err := os.Stat(hostPath)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return w.addFile(hostPath, entryName(into, info.Name()), info)
	}

	return filepath.WalkDir(hostPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(hostPath, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return w.addFile(p, entryName(into, filepath.ToSlash(rel)), info)
	})
}

// Adds a single regular file under the given entry name.
func (w *archiveWriter) addFile(hostPath, name string, info fs.FileInfo) error {
	f, err := os.Open(hostPath)
	if err != nil {
		return err
	}
	defer f.Close()

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	return w.addEntry(header, name, f)
}

func (w *archiveWriter) addBytes(name string, data []byte) error {
	return w.addEntry(&zip.FileHeader{}, name, bytes.NewReader(data))
}

// Writes one entry, creating its parent directories first.
func (w *archiveWriter) addEntry(header *zip.FileHeader, name string, r io.Reader) error {
	if w.seen[name] {
		return fmt.Errorf("duplicate entry %q: %w", name, errdefs.ErrAlreadyExists)
	}
	if err := w.addParents(name); err != nil {
		return err
	}

	header.Name = name
	header.Method = zip.Deflate
	header.Modified = entryTime

	dst, err := w.zw.CreateHeader(header)
	if err != nil {
		return err
	}

	digester := digest.Canonical.Digester()
	n, err := io.Copy(io.MultiWriter(dst, digester.Hash()), r)
	if err != nil {
		return err
	}

	w.seen[name] = true
	w.entries = append(w.entries, Entry{Name: name, Size: n, Digest: digester.Digest()})
	return nil
}

// Writes directory entries for every missing parent of name.
func (w *archiveWriter) addParents(name string) error {
	dir := path.Dir(name)
	if dir == "." || dir == "/" {
		return nil
	}
	if err := w.addParents(dir); err != nil {
		return err
	}

	entry := dir + "/"
	if w.seen[entry] {
		return nil
	}

	header := &zip.FileHeader{Name: entry, Method: zip.Store, Modified: entryTime}
	header.SetMode(fs.ModeDir | paths.DefaultDirMode)
	if _, err := w.zw.CreateHeader(header); err != nil {
		return err
	}
	w.seen[entry] = true
	return nil
}

// Joins an archive directory and a relative name into an entry name.
//
// The result is rooted at the top of the archive. ".." elements cannot
// climb above it.
func entryName(into, name string) string {
	into = strings.ReplaceAll(into, "\\", "/")
	return strings.TrimPrefix(path.Join("/", into, name), "/")
}
