package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/studybot/pkg/models"
)

// ImportConfig defines how expression spreadsheets are read
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	IDColumn          string // Column with the expression id (may be blank)
	TextColumn        string // Column with the source-language line
	TranslationColumn string // Column with the translation
	EpisodeColumn     string // Column with the episode label
	CategoryColumn    string // Column with the category label
	SheetName         string // Name of the sheet to import
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig(path string) ImportConfig {
	return ImportConfig{
		FilePath:          path,
		IDColumn:          "A",
		TextColumn:        "B",
		TranslationColumn: "C",
		EpisodeColumn:     "D",
		CategoryColumn:    "E",
		SheetName:         "Sheet1",
		StartRow:          2, // Skip the header row
	}
}

// Load reads Expression Items from an .xlsx or .csv export of mined
// dialogue expressions. Rows without text are skipped; rows without an id
// get a stable one derived from their row number, so re-importing the same
// file yields the same ids.
func Load(path string) ([]models.Expression, error) {
	return LoadWithConfig(DefaultImportConfig(path))
}

// LoadWithConfig reads Expression Items using an explicit column layout
func LoadWithConfig(config ImportConfig) ([]models.Expression, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return loadFromCSV(config)
	}
	return loadFromExcel(config)
}

// loadFromExcel reads expressions from an Excel file
func loadFromExcel(config ImportConfig) ([]models.Expression, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	var expressions []models.Expression
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		if expr, ok := rowToExpression(row, config, i+1); ok {
			expressions = append(expressions, expr)
		}
	}
	return expressions, nil
}

// loadFromCSV reads expressions from a CSV file
func loadFromCSV(config ImportConfig) ([]models.Expression, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var expressions []models.Expression
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		if expr, ok := rowToExpression(row, config, rowNum); ok {
			expressions = append(expressions, expr)
		}
	}
	return expressions, nil
}

// rowToExpression maps one spreadsheet row onto an Expression. Returns
// false when the row carries no usable text.
func rowToExpression(row []string, config ImportConfig, rowNum int) (models.Expression, bool) {
	cell := func(column string) string {
		if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	text := cell(config.TextColumn)
	if text == "" {
		return models.Expression{}, false
	}

	id := cell(config.IDColumn)
	if id == "" {
		id = fmt.Sprintf("expr_%04d", rowNum)
	}

	metadata := map[string]string{}
	if episode := cell(config.EpisodeColumn); episode != "" {
		metadata["episode"] = episode
	}
	if category := cell(config.CategoryColumn); category != "" {
		metadata["category"] = category
	}

	return models.Expression{
		ID:          id,
		Text:        text,
		Translation: cell(config.TranslationColumn),
		Metadata:    metadata,
	}, true
}

// columnToIndex converts an Excel column letter to a zero-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	if column == "" {
		return -1
	}
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
