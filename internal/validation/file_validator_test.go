package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nominacli/internal/errors"
)

func TestFileValidator_ValidateInputFile(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantType  apperrors.ErrorType
		wantErr   bool
	}{
		{
			name: "valid file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "recibo.xml")
				require.NoError(t, os.WriteFile(file, []byte("<x/>"), 0644))
				return file
			},
		},
		{
			name: "non-existent file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nada.xml")
			},
			wantErr:  true,
			wantType: apperrors.ErrTypeLoad,
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr:  true,
			wantType: apperrors.ErrTypeLoad,
		},
		{
			name: "empty file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "vacio.xml")
				require.NoError(t, os.WriteFile(file, nil, 0644))
				return file
			},
			wantErr:  true,
			wantType: apperrors.ErrTypeLoad,
		},
		{
			name: "lock file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "~$lote.zip")
				require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
				return file
			},
			wantErr:  true,
			wantType: apperrors.ErrTypeLoad,
		},
		{
			name: "too large",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "grande.xml")
				require.NoError(t, os.WriteFile(file, make([]byte, 64), 0644))
				return file
			},
			wantErr:  true,
			wantType: apperrors.ErrTypeSizeLimit,
		},
	}

	v := NewFileValidator(32, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateInputFile(tt.setupFunc(t))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), err.Error())
		})
	}
}

func TestFileValidator_EmptyFileSentinel(t *testing.T) {
	file := filepath.Join(t.TempDir(), "vacio.xml")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	err := NewFileValidator(0, nil).ValidateInputFile(file)
	assert.True(t, errors.Is(err, ErrEmptyFile))
}

func TestFileValidator_ValidateInputFiles(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.xml")
	require.NoError(t, os.WriteFile(ok, []byte("<x/>"), 0644))

	v := NewFileValidator(0, nil)
	assert.NoError(t, v.ValidateInputFiles([]string{ok}))

	err := v.ValidateInputFiles([]string{ok, filepath.Join(dir, "a.xml"), filepath.Join(dir, "b.xml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.xml")
	assert.Contains(t, err.Error(), "b.xml")
}

func TestFileValidator_ValidateOutputFile(t *testing.T) {
	v := NewFileValidator(0, nil)

	nested := filepath.Join(t.TempDir(), "reportes", "2024", "nomina.xlsx")
	require.NoError(t, v.ValidateOutputFile(nested))
	info, err := os.Stat(filepath.Dir(nested))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := os.ReadDir(filepath.Dir(nested))
	require.NoError(t, err)
	assert.Empty(t, entries, "write test file is removed")

	assert.Error(t, v.ValidateOutputFile(t.TempDir()))
}
