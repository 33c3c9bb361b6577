package pricelist

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jmakela/bottlecat/internal/domain"
)

// headerMarker is the column heading that identifies the real header row.
// The sheet starts with banner rows (publication date, disclaimers) that
// must be skipped.
const headerMarker = "Numero"

// Column headings in the published sheet, Finnish as-is.
const (
	colNumber      = "Numero"
	colName        = "Nimi"
	colProducer    = "Valmistaja"
	colBottleSize  = "Pullokoko"
	colPrice       = "Hinta"
	colPriceLitre  = "Litrahinta"
	colType        = "Tyyppi"
	colSubtype     = "Alatyyppi"
	colCountry     = "Valmistusmaa"
	colRegion      = "Alue"
	colVintage     = "Vuosikerta"
	colVarietal    = "Rypäleet"
	colDescription = "Luonnehdinta"
	colPackaging   = "Pakkaustyyppi"
	colClosure     = "Suljentatyyppi"
	colAlcohol     = "Alkoholi-%"
	colSelection   = "Valikoima"
	colEAN         = "EAN"
)

// ParseResult carries the parsed candidates plus per-row problems. A missing
// header row is fatal and returned as an error instead; a malformed
// individual row is skipped and reported here.
type ParseResult struct {
	Items     []domain.CatalogItem
	Skipped   int
	RowErrors []string
}

// Parse reads the spreadsheet bytes and extracts candidate catalog items.
func Parse(data []byte) (*ParseResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrHeaderNotFound)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}

	headerIdx, columns := locateHeader(rows)
	if headerIdx < 0 {
		return nil, domain.ErrHeaderNotFound
	}

	result := &ParseResult{}
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		item, err := parseRow(row, columns)
		if err != nil {
			result.Skipped++
			result.RowErrors = append(result.RowErrors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

// locateHeader finds the header row by the marker column and maps column
// headings to their indices.
func locateHeader(rows [][]string) (int, map[string]int) {
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != headerMarker {
				continue
			}
			columns := make(map[string]int, len(row))
			for k, heading := range row {
				heading = strings.TrimSpace(heading)
				if heading != "" {
					columns[heading] = k
				}
			}
			return i, columns
		}
	}
	return -1, nil
}

func parseRow(row []string, columns map[string]int) (domain.CatalogItem, error) {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	item := domain.CatalogItem{
		ID:          cell(colNumber),
		Name:        cell(colName),
		Producer:    cell(colProducer),
		Type:        cell(colType),
		Subtype:     cell(colSubtype),
		Country:     cell(colCountry),
		Region:      cell(colRegion),
		Varietal:    cell(colVarietal),
		Description: cell(colDescription),
		Packaging:   cell(colPackaging),
		Closure:     cell(colClosure),
		Selection:   cell(colSelection),
		EAN:         cell(colEAN),
	}

	var err error
	if item.Price, err = parseDecimal(cell(colPrice)); err != nil {
		return domain.CatalogItem{}, fmt.Errorf("price: %w", err)
	}
	if raw := cell(colPriceLitre); raw != "" {
		if item.PricePerLitre, err = parseDecimal(raw); err != nil {
			return domain.CatalogItem{}, fmt.Errorf("price per litre: %w", err)
		}
	}
	if raw := cell(colAlcohol); raw != "" {
		if item.AlcoholPercent, err = parseDecimal(raw); err != nil {
			return domain.CatalogItem{}, fmt.Errorf("alcohol: %w", err)
		}
	}
	if raw := cell(colBottleSize); raw != "" {
		size, err := parseBottleSize(raw)
		if err != nil {
			return domain.CatalogItem{}, fmt.Errorf("bottle size: %w", err)
		}
		item.BottleSize = size
	}
	if raw := cell(colVintage); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			item.Vintage = &v
		}
	}
	return item, nil
}

// parseDecimal handles the sheet's comma decimal separator.
func parseDecimal(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}

// parseBottleSize parses values like "0,75 l" into litres.
func parseBottleSize(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.ToLower(s), "l"))
	return parseDecimal(s)
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
