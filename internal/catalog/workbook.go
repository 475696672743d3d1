package catalog

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	keyHeaders  = []string{"clave", "cve", "id", "c_clave"}
	descHeaders = []string{"descripción", "descripcion", "descrip", "nombre"}
)

// LoadWorkbook opens an xlsx catalog workbook and overlays its sheets on
// the built-in tables. Each sheet name is taken as a catalog name.
func LoadWorkbook(path string, logger *slog.Logger) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog workbook: %w", err)
	}
	defer f.Close()

	return fromWorkbook(f, logger)
}

// ReadWorkbook is LoadWorkbook for an already open reader.
func ReadWorkbook(r io.Reader, logger *slog.Logger) (*Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog workbook: %w", err)
	}
	defer f.Close()

	return fromWorkbook(f, logger)
}

func fromWorkbook(f *excelize.File, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With(slog.String("component", "catalog"))

	overlay := make(map[string]map[string]string)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		entries := parseSheet(rows)
		if len(entries) == 0 {
			logger.Debug("catalog sheet has no entries", slog.String("sheet", sheet))
			continue
		}
		overlay[strings.TrimSpace(sheet)] = entries
		logger.Info("catalog sheet loaded",
			slog.String("sheet", sheet),
			slog.Int("entries", len(entries)))
	}

	return Builtin().merge(overlay), nil
}

// parseSheet finds the header row by its key/description column names,
// falling back to the first two columns when no header is recognizable.
// SAT sheets carry several rows of metadata before the header.
func parseSheet(rows [][]string) map[string]string {
	keyCol, descCol, start := -1, -1, 0
	for i, row := range rows {
		k, d := -1, -1
		for j, cell := range row {
			h := strings.ToLower(strings.TrimSpace(cell))
			switch {
			case k < 0 && contains(keyHeaders, h):
				k = j
			case d < 0 && contains(descHeaders, h):
				d = j
			}
		}
		if k >= 0 {
			keyCol, descCol, start = k, d, i+1
			break
		}
	}
	if keyCol < 0 || descCol < 0 {
		keyCol, descCol, start = 0, 1, 0
	}

	entries := make(map[string]string)
	for _, row := range rows[start:] {
		if keyCol >= len(row) || descCol >= len(row) {
			continue
		}
		key := strings.TrimSpace(row[keyCol])
		desc := strings.TrimSpace(row[descCol])
		if key == "" || desc == "" {
			continue
		}
		entries[key] = desc
	}
	return entries
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
