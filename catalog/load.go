package catalog

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/Jurgenvdlecq/seatemail/model"
)

// row is the tabular form of an entry, shared by the CSV and XLSX readers.
type row struct {
	Brand  string `csv:"merk"`
	Model  string `csv:"model"`
	Engine string `csv:"motor"`
	Price  string `csv:"vanafprijs"`
}

type jsonEntry struct {
	Brand  string          `json:"merk"`
	Model  string          `json:"model"`
	Engine string          `json:"motor"`
	Price  json.RawMessage `json:"vanafprijs"`
}

// Load reads a price list from path. The format follows the extension:
// .json (array of objects), .csv (header row, "," or ";" separated) or .xlsx
// (first sheet, header row).
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var entries []model.CatalogEntry
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		entries, err = decodeJSON(data)
	case ".csv":
		entries, err = decodeCSV(data)
	case ".xlsx":
		entries, err = decodeXLSX(data)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", filepath.Base(path), err)
	}
	return New(entries), nil
}

func decodeJSON(data []byte) ([]model.CatalogEntry, error) {
	var raw []jsonEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	entries := make([]model.CatalogEntry, 0, len(raw))
	for i, r := range raw {
		price, err := jsonPrice(r.Price)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		entries = append(entries, model.CatalogEntry{
			Brand:         strings.TrimSpace(r.Brand),
			Model:         strings.TrimSpace(r.Model),
			Engine:        strings.TrimSpace(r.Engine),
			StartingPrice: price,
		})
	}
	return entries, nil
}

func jsonPrice(raw json.RawMessage) (model.Amount, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return model.Amount{}, err
		}
		return parsePrice(s)
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return model.Amount{}, fmt.Errorf("invalid price %s", raw)
	}
	return *model.NewAmount(d), nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// toUTF8 returns data as UTF-8. Spreadsheet exports on Dutch Windows
// machines are Windows-1252, where the euro sign is byte 0x80.
func toUTF8(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("decode windows-1252: %w", err)
	}
	return decoded, nil
}

func decodeCSV(data []byte) ([]model.CatalogEntry, error) {
	data, err := toUTF8(data)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows []row
	if err := gocsv.UnmarshalCSV(r, &rows); err != nil {
		return nil, err
	}
	// row 1 is the header
	return rowsToEntries(rows, 2)
}

func sniffDelimiter(data []byte) rune {
	header, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		return ';'
	}
	return ','
}

func decodeXLSX(data []byte) ([]model.CatalogEntry, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	cols := make(map[string]int)
	for i, h := range cells[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"merk", "model", "motor", "vanafprijs"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	cell := func(r []string, name string) string {
		if i := cols[name]; i < len(r) {
			return r[i]
		}
		return ""
	}
	rows := make([]row, 0, len(cells)-1)
	for _, r := range cells[1:] {
		rows = append(rows, row{
			Brand:  cell(r, "merk"),
			Model:  cell(r, "model"),
			Engine: cell(r, "motor"),
			Price:  cell(r, "vanafprijs"),
		})
	}
	return rowsToEntries(rows, 2)
}

// rowsToEntries converts rows, skipping blank ones. first is the sheet row
// number of rows[0], used in error messages.
func rowsToEntries(rows []row, first int) ([]model.CatalogEntry, error) {
	entries := make([]model.CatalogEntry, 0, len(rows))
	for i, r := range rows {
		brand, mdl, engine := strings.TrimSpace(r.Brand), strings.TrimSpace(r.Model), strings.TrimSpace(r.Engine)
		if brand == "" && mdl == "" && engine == "" && strings.TrimSpace(r.Price) == "" {
			continue
		}
		price, err := parsePrice(r.Price)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", first+i, err)
		}
		entries = append(entries, model.CatalogEntry{
			Brand:         brand,
			Model:         mdl,
			Engine:        engine,
			StartingPrice: price,
		})
	}
	return entries, nil
}

var dutchThousands = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)

// parsePrice accepts "32990", "32990.50", "32.990" and "32.990,50", with or
// without a euro sign.
func parsePrice(s string) (model.Amount, error) {
	clean := strings.TrimSpace(strings.ReplaceAll(s, "€", ""))
	clean = strings.ReplaceAll(clean, " ", "")
	switch {
	case strings.Contains(clean, ","):
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case dutchThousands.MatchString(clean):
		clean = strings.ReplaceAll(clean, ".", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return model.Amount{}, fmt.Errorf("invalid price %q", s)
	}
	return *model.NewAmount(d), nil
}
