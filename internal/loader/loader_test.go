package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nominacli/internal/errors"
	"nominacli/internal/shared/testutil"
	"nominacli/pkg/contracts/domain"
)

func TestDetectKind(t *testing.T) {
	archive := testutil.BuildZip(t, testutil.ZipEntry{Name: "a.xml", Content: testutil.Invoice()})

	tests := []struct {
		name string
		unit domain.InputUnit
		want Kind
	}{
		{"xml by content", domain.InputUnit{Name: "recibo.xml", Content: testutil.Invoice()}, KindXML},
		{"zip by extension", domain.InputUnit{Name: "LOTE.ZIP", Content: []byte("garbage")}, KindArchive},
		{"zip by signature", domain.InputUnit{Name: "upload.bin", Content: archive}, KindArchive},
		{"unknown defaults to xml", domain.InputUnit{Name: "data", Content: []byte("hello")}, KindXML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectKind(tt.unit))
		})
	}
}

func TestLoader_SingleXML(t *testing.T) {
	l := New(Limits{}, nil)

	stream, err := l.Open(domain.InputUnit{Name: "recibo.xml", Content: testutil.Invoice()})
	require.NoError(t, err)

	docs, err := Collect(stream)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "recibo.xml", docs[0].Source)
	assert.Equal(t, "recibo.xml", docs[0].Unit)
	assert.Equal(t, 0, docs[0].Index)

	assert.False(t, stream.Next(), "stream must not restart")
}

func TestLoader_ArchiveFiltersEntries(t *testing.T) {
	archive := testutil.BuildZip(t,
		testutil.ZipEntry{Name: "enero/recibo1.xml", Content: testutil.Invoice()},
		testutil.ZipEntry{Name: "enero/", Content: nil},
		testutil.ZipEntry{Name: "LEEME.txt", Content: []byte("notes")},
		testutil.ZipEntry{Name: "__MACOSX/enero/._recibo1.xml", Content: []byte{0, 1}},
		testutil.ZipEntry{Name: "enero/._recibo2.xml", Content: []byte{0, 1}},
		testutil.ZipEntry{Name: "enero/RECIBO2.XML", Content: testutil.Invoice()},
	)

	l := New(Limits{}, nil)
	stream, err := l.Open(domain.InputUnit{Name: "lote.zip", Content: archive})
	require.NoError(t, err)

	docs, err := Collect(stream)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "lote.zip!enero/recibo1.xml", docs[0].Source)
	assert.Equal(t, "lote.zip!enero/RECIBO2.XML", docs[1].Source)
	assert.Equal(t, 0, docs[0].Index)
	assert.Equal(t, 1, docs[1].Index)
	assert.Equal(t, 4, stream.Skipped())
}

func TestLoader_EmptyArchive(t *testing.T) {
	archive := testutil.BuildZip(t)

	stream, err := New(Limits{}, nil).Open(domain.InputUnit{Name: "vacio.zip", Content: archive})
	require.NoError(t, err)

	docs, err := Collect(stream)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoader_CorruptArchive(t *testing.T) {
	_, err := New(Limits{}, nil).Open(domain.InputUnit{Name: "roto.zip", Content: []byte("PK\x03\x04 definitely not a zip")})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeLoad))
}

func TestLoader_Limits(t *testing.T) {
	big := []byte("<a>" + strings.Repeat("x", 200) + "</a>")
	archive := testutil.BuildZip(t,
		testutil.ZipEntry{Name: "1.xml", Content: big},
		testutil.ZipEntry{Name: "2.xml", Content: big},
		testutil.ZipEntry{Name: "3.xml", Content: big},
	)

	tests := []struct {
		name   string
		limits Limits
	}{
		{"unit bytes", Limits{MaxUnitBytes: 10}},
		{"document count", Limits{MaxDocuments: 2}},
		{"entry bytes", Limits{MaxEntryBytes: 100}},
		{"total bytes", Limits{MaxTotalBytes: 500}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.limits, nil).Open(domain.InputUnit{Name: "lote.zip", Content: archive})
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSizeLimit), "got %v", err)
		})
	}

	t.Run("within limits", func(t *testing.T) {
		limits := Limits{MaxUnitBytes: 1 << 20, MaxDocuments: 3, MaxEntryBytes: 1024, MaxTotalBytes: 4096}
		stream, err := New(limits, nil).Open(domain.InputUnit{Name: "lote.zip", Content: archive})
		require.NoError(t, err)
		docs, err := Collect(stream)
		require.NoError(t, err)
		assert.Len(t, docs, 3)
	})
}

func TestLoader_SingleXMLUnitLimit(t *testing.T) {
	_, err := New(Limits{MaxUnitBytes: 16}, nil).Open(domain.InputUnit{Name: "r.xml", Content: testutil.Invoice()})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSizeLimit))
}
