package loader

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	apperrors "nominacli/internal/errors"
	"nominacli/pkg/contracts/domain"
)

// Kind is the detected shape of an input unit.
type Kind int

const (
	KindXML Kind = iota
	KindArchive
)

func (k Kind) String() string {
	if k == KindArchive {
		return "archive"
	}
	return "xml"
}

// Limits bounds the resources a single input unit may consume. A zero field
// disables that check.
type Limits struct {
	MaxUnitBytes  int64 // compressed size of the unit as submitted
	MaxDocuments  int   // XML documents per unit
	MaxEntryBytes int64 // uncompressed size of one archive entry
	MaxTotalBytes int64 // uncompressed size of all XML entries of one unit
}

// SourceSeparator joins an archive name and an entry path in document sources.
const SourceSeparator = "!"

// Loader turns input units into document streams.
type Loader struct {
	limits Limits
	logger *slog.Logger
}

// New creates a loader enforcing limits.
func New(limits Limits, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{
		limits: limits,
		logger: logger.With(slog.String("component", "loader")),
	}
}

// DetectKind reports whether unit is a zip archive, judged by its name or
// by its content signature.
func DetectKind(unit domain.InputUnit) Kind {
	if strings.EqualFold(filepath.Ext(unit.Name), ".zip") {
		return KindArchive
	}
	for mt := mimetype.Detect(unit.Content); mt != nil; mt = mt.Parent() {
		if mt.Is("application/zip") {
			return KindArchive
		}
	}
	return KindXML
}

// Open validates unit against the limits and returns a stream over its XML
// documents. Archive problems detectable from the central directory are
// reported here, before any document is produced.
func (l *Loader) Open(unit domain.InputUnit) (*Stream, error) {
	size := int64(len(unit.Content))
	if l.limits.MaxUnitBytes > 0 && size > l.limits.MaxUnitBytes {
		return nil, apperrors.NewSizeLimitError(fmt.Sprintf("input %q size", unit.Name), size, l.limits.MaxUnitBytes).
			WithContext("unit", unit.Name)
	}

	kind := DetectKind(unit)
	if kind == KindXML {
		l.logger.Debug("opened xml unit", slog.String("unit", unit.Name), slog.Int64("bytes", size))
		return &Stream{
			unit:   unit.Name,
			single: &domain.RawDocument{Source: unit.Name, Unit: unit.Name, Content: unit.Content},
		}, nil
	}

	zr, err := zip.NewReader(bytes.NewReader(unit.Content), size)
	if err != nil {
		return nil, apperrors.NewLoadError(unit.Name, err)
	}

	var (
		entries []*zip.File
		skipped int
		total   uint64
	)
	for _, f := range zr.File {
		if !isXMLEntry(f) {
			skipped++
			continue
		}
		if l.limits.MaxEntryBytes > 0 && f.UncompressedSize64 > uint64(l.limits.MaxEntryBytes) {
			return nil, apperrors.NewSizeLimitError(
				fmt.Sprintf("entry %q uncompressed size", sourceOf(unit.Name, f.Name)),
				int64(f.UncompressedSize64), l.limits.MaxEntryBytes).WithContext("unit", unit.Name)
		}
		total += f.UncompressedSize64
		entries = append(entries, f)
	}

	if l.limits.MaxDocuments > 0 && len(entries) > l.limits.MaxDocuments {
		return nil, apperrors.NewSizeLimitError(fmt.Sprintf("archive %q document count", unit.Name),
			int64(len(entries)), int64(l.limits.MaxDocuments)).WithContext("unit", unit.Name)
	}
	if l.limits.MaxTotalBytes > 0 && total > uint64(l.limits.MaxTotalBytes) {
		return nil, apperrors.NewSizeLimitError(fmt.Sprintf("archive %q uncompressed size", unit.Name),
			int64(total), l.limits.MaxTotalBytes).WithContext("unit", unit.Name)
	}

	l.logger.Debug("opened archive unit",
		slog.String("unit", unit.Name),
		slog.Int("xml_entries", len(entries)),
		slog.Int("skipped_entries", skipped),
		slog.Uint64("declared_bytes", total))

	return &Stream{
		unit:    unit.Name,
		entries: entries,
		skipped: skipped,
		limits:  l.limits,
	}, nil
}

// isXMLEntry filters out directories, macOS resource forks and anything not
// named *.xml.
func isXMLEntry(f *zip.File) bool {
	name := f.Name
	if f.FileInfo().IsDir() || strings.HasSuffix(name, "/") {
		return false
	}
	if strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(path.Base(name), "._") {
		return false
	}
	return strings.EqualFold(path.Ext(name), ".xml")
}

func sourceOf(unit, entry string) string {
	return unit + SourceSeparator + entry
}

// Stream is a lazy, finite, non-restartable sequence of documents from one
// input unit. It is not safe for concurrent use.
type Stream struct {
	unit    string
	single  *domain.RawDocument
	entries []*zip.File
	skipped int
	limits  Limits

	next    int
	read    int64
	current domain.RawDocument
	err     error
	done    bool
}

// Next advances to the next document. It returns false when the stream is
// exhausted or an error occurred; check Err afterwards.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}

	if s.single != nil {
		s.current = *s.single
		s.single = nil
		s.done = true
		return true
	}

	if s.next >= len(s.entries) {
		s.done = true
		return false
	}

	f := s.entries[s.next]
	content, err := s.readEntry(f)
	if err != nil {
		s.err = err
		s.done = true
		return false
	}

	s.current = domain.RawDocument{
		Source:  sourceOf(s.unit, f.Name),
		Unit:    s.unit,
		Index:   s.next,
		Content: content,
	}
	s.next++
	return true
}

// readEntry reads one entry without trusting its declared size.
func (s *Stream) readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, apperrors.NewLoadError(s.unit, fmt.Errorf("open entry %q: %w", f.Name, err))
	}
	defer rc.Close()

	var r io.Reader = rc
	if s.limits.MaxEntryBytes > 0 {
		r = io.LimitReader(rc, s.limits.MaxEntryBytes+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewLoadError(s.unit, fmt.Errorf("read entry %q: %w", f.Name, err))
	}

	n := int64(len(content))
	if s.limits.MaxEntryBytes > 0 && n > s.limits.MaxEntryBytes {
		return nil, apperrors.NewSizeLimitError(fmt.Sprintf("entry %q uncompressed size", sourceOf(s.unit, f.Name)),
			n, s.limits.MaxEntryBytes).WithContext("unit", s.unit)
	}
	s.read += n
	if s.limits.MaxTotalBytes > 0 && s.read > s.limits.MaxTotalBytes {
		return nil, apperrors.NewSizeLimitError(fmt.Sprintf("archive %q uncompressed size", s.unit),
			s.read, s.limits.MaxTotalBytes).WithContext("unit", s.unit)
	}
	return content, nil
}

// Document returns the document Next advanced to.
func (s *Stream) Document() domain.RawDocument {
	return s.current
}

// Err returns the error that stopped the stream, if any.
func (s *Stream) Err() error {
	return s.err
}

// Skipped is the number of archive entries ignored as non-XML.
func (s *Stream) Skipped() int {
	return s.skipped
}

// Unit is the name of the input unit being streamed.
func (s *Stream) Unit() string {
	return s.unit
}

// Collect drains the stream. On error it returns no documents so that a
// unit is either processed whole or not at all.
func Collect(s *Stream) ([]domain.RawDocument, error) {
	var docs []domain.RawDocument
	for s.Next() {
		docs = append(docs, s.Document())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
