package efektivitas

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"konservasi-platform/internal/models"
)

// FieldName is a canonical import column
type FieldName string

const (
	FieldAreaName FieldName = "area_name"
	FieldYear     FieldName = "year"
	FieldScore    FieldName = "score"
	FieldNote     FieldName = "note"
)

// Field is the resolution of one header cell: either KnownField or IgnoredField
type Field interface {
	column(index int) string
}

// KnownField is a header recognised as one of the canonical columns
type KnownField struct {
	Name FieldName
}

func (f KnownField) column(int) string { return string(f.Name) }

// IgnoredField is a header with no meaning for the import
type IgnoredField struct {
	Header string
}

func (f IgnoredField) column(index int) string { return fmt.Sprintf("-ignored-%d", index) }

var headerSynonyms = map[string]FieldName{
	"nama_kawasan": FieldAreaName,
	"nama kawasan": FieldAreaName,
	"kawasan":      FieldAreaName,
	"tahun":        FieldYear,
	"year":         FieldYear,
	"skor":         FieldScore,
	"score":        FieldScore,
	"nilai":        FieldScore,
	"keterangan":   FieldNote,
	"description":  FieldNote,
	"notes":        FieldNote,
}

// ResolveHeader matches a header cell against the synonym table, ignoring case
// and surrounding whitespace
func ResolveHeader(header string) Field {
	key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
	if name, ok := headerSynonyms[key]; ok {
		return KnownField{Name: name}
	}
	return IgnoredField{Header: header}
}

// ResolveHeaders resolves a header row. When two columns map to the same field
// the rightmost one is used and the earlier one is ignored.
func ResolveHeaders(headers []string) []Field {
	fields := make([]Field, len(headers))
	last := make(map[FieldName]int)
	for i, h := range headers {
		f := ResolveHeader(h)
		if known, ok := f.(KnownField); ok {
			if prev, seen := last[known.Name]; seen {
				fields[prev] = IgnoredField{Header: headers[prev]}
			}
			last[known.Name] = i
		}
		fields[i] = f
	}
	return fields
}

// RawRecord is one data row of an import file, before validation.
// Row is the 1-based line or sheet row the record came from.
type RawRecord struct {
	Row      int    `csv:"-"`
	AreaName string `csv:"area_name"`
	Year     string `csv:"year"`
	Score    string `csv:"score"`
	Note     string `csv:"note"`
}

// ErrNoRecognisedColumns is returned when no header cell maps to an import column
var ErrNoRecognisedColumns = errors.New("file tidak memiliki kolom yang dikenali")

// DecodeCSV reads a delimited import file with a header row
func DecodeCSV(r io.Reader) ([]RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, eris.New("import file is empty")
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to read import header")
	}

	return decode(header, func() ([]string, int, error) {
		rec, err := cr.Read()
		if err != nil {
			return nil, 0, err
		}
		line, _ := cr.FieldPos(0)
		return rec, line, nil
	})
}

// DecodeRows reads already-tabulated rows such as a spreadsheet sheet.
// rows[0] is the header row.
func DecodeRows(rows [][]string) ([]RawRecord, error) {
	if len(rows) == 0 {
		return nil, eris.New("import file is empty")
	}

	i := 1
	return decode(rows[0], func() ([]string, int, error) {
		if i >= len(rows) {
			return nil, 0, io.EOF
		}
		rec := rows[i]
		i++
		return rec, i, nil
	})
}

func decode(header []string, next func() ([]string, int, error)) ([]RawRecord, error) {
	fields := ResolveHeaders(header)

	columns := make([]string, len(fields))
	recognised := false
	for i, f := range fields {
		columns[i] = f.column(i)
		if _, ok := f.(KnownField); ok {
			recognised = true
		}
	}
	if !recognised {
		return nil, ErrNoRecognisedColumns
	}

	src := &paddedReader{next: next, width: len(columns)}
	dec, err := csvutil.NewDecoder(src, columns...)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create import decoder")
	}

	var records []RawRecord
	for {
		var rec RawRecord
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrapf(err, "failed to decode import row %d", src.line)
		}
		rec.Row = src.line
		records = append(records, rec)
	}
	return records, nil
}

// paddedReader feeds csvutil fixed-width records, skipping blank rows
type paddedReader struct {
	next  func() ([]string, int, error)
	width int
	line  int
}

func (p *paddedReader) Read() ([]string, error) {
	for {
		rec, line, err := p.next()
		if err != nil {
			return nil, err
		}
		if blankRecord(rec) {
			continue
		}
		p.line = line

		out := make([]string, p.width)
		copy(out, rec)
		return out, nil
	}
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ImportStatus tags the outcome of validating one record
type ImportStatus string

const (
	StatusValid     ImportStatus = "VALID"
	StatusInvalid   ImportStatus = "INVALID"
	StatusDuplicate ImportStatus = "DUPLICATE"
)

// Import validation messages
const (
	MsgAreaNameRequired = "Nama kawasan harus diisi"
	MsgYearRange        = "Tahun harus antara 2000-2030"
	MsgScoreRange       = "Skor harus antara 0-100"
	MsgScoreInteger     = "Skor harus bilangan bulat"
	MsgAreaNotFound     = "Kawasan tidak ditemukan dalam database"
)

// ValidatedRecord is a RawRecord after range checks and area resolution
type ValidatedRecord struct {
	Row      int          `json:"row"`
	AreaName string       `json:"area_name"`
	Year     int          `json:"year"`
	Score    int          `json:"score"`
	Note     *string      `json:"note,omitempty"`
	AreaID   *int64       `json:"area_id,omitempty"`
	Category Category     `json:"category"`
	Status   ImportStatus `json:"status"`
	Error    string       `json:"error,omitempty"`
}

type areaYear struct {
	areaID int64
	year   int
}

// ValidateImportBatch checks every raw record and resolves its area by
// case-insensitive exact name. Failures accumulate per record and never stop the
// batch. A later record repeating the area and year of an earlier valid record
// is marked DUPLICATE.
func ValidateImportBatch(raw []RawRecord, knownAreas []models.Area) []ValidatedRecord {
	byName := make(map[string]int64, len(knownAreas))
	for _, a := range knownAreas {
		key := strings.ToLower(a.Name)
		if _, ok := byName[key]; !ok {
			byName[key] = a.ID
		}
	}

	firstRow := make(map[areaYear]int)
	result := make([]ValidatedRecord, 0, len(raw))

	for _, r := range raw {
		var errs []string
		rec := ValidatedRecord{
			Row:      r.Row,
			AreaName: strings.TrimSpace(r.AreaName),
		}

		if note := strings.TrimSpace(r.Note); note != "" {
			rec.Note = &note
		}

		if rec.AreaName == "" {
			errs = append(errs, MsgAreaNameRequired)
		}

		if year, ok := parseYear(r.Year); ok {
			rec.Year = year
		} else {
			errs = append(errs, MsgYearRange)
		}

		score, scoreErr := parseScore(r.Score)
		if scoreErr != "" {
			errs = append(errs, scoreErr)
		}
		rec.Score = score
		rec.Category = Classify(score)

		if id, ok := byName[strings.ToLower(rec.AreaName)]; ok && rec.AreaName != "" {
			rec.AreaID = &id
		} else {
			errs = append(errs, MsgAreaNotFound)
		}

		switch {
		case len(errs) > 0:
			rec.Status = StatusInvalid
			rec.Error = strings.Join(errs, ", ")
		default:
			key := areaYear{areaID: *rec.AreaID, year: rec.Year}
			if prev, dup := firstRow[key]; dup {
				rec.Status = StatusDuplicate
				rec.Error = fmt.Sprintf("Duplikat kawasan dan tahun dengan baris %d", prev)
			} else {
				firstRow[key] = rec.Row
				rec.Status = StatusValid
			}
		}

		result = append(result, rec)
	}

	return result
}

// parseYear accepts spreadsheet numerics such as "2024.0" but not "2024.5"
func parseYear(s string) (int, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v != math.Trunc(v) || v < models.MinAssessmentYear || v > models.MaxAssessmentYear {
		return 0, false
	}
	return int(v), true
}

func parseScore(s string) (int, string) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || v < models.MinScore || v > models.MaxScore {
		return 0, MsgScoreRange
	}
	if v != math.Trunc(v) {
		return int(v), MsgScoreInteger
	}
	return int(v), ""
}

// ValidRecords converts the VALID records into store inputs. Invalid and
// duplicate records are never returned.
func ValidRecords(records []ValidatedRecord) []models.AssessmentInput {
	inputs := make([]models.AssessmentInput, 0, len(records))
	for _, r := range records {
		if r.Status != StatusValid || r.AreaID == nil {
			continue
		}
		inputs = append(inputs, models.AssessmentInput{
			AreaID: *r.AreaID,
			Year:   r.Year,
			Score:  r.Score,
			Note:   r.Note,
		})
	}
	return inputs
}

// ImportTally counts validated records by status
type ImportTally struct {
	Total     int `json:"total"`
	Valid     int `json:"valid"`
	Invalid   int `json:"invalid"`
	Duplicate int `json:"duplicate"`
}

// Tally counts records by status
func Tally(records []ValidatedRecord) ImportTally {
	t := ImportTally{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case StatusValid:
			t.Valid++
		case StatusInvalid:
			t.Invalid++
		case StatusDuplicate:
			t.Duplicate++
		}
	}
	return t
}

// TemplateCSV is the sample file offered for download before an import
const TemplateCSV = "nama_kawasan,tahun,skor,keterangan\n" +
	"Contoh Kawasan 1,2024,85,Efektivitas baik\n" +
	"Contoh Kawasan 2,2024,65,Perlu peningkatan\n"
