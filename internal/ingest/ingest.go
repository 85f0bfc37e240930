// Package ingest loads the pipeline's CSV exports into the databases: the
// per-match feature vectors, the published predictions, the derived model
// rows and the mirror-side ID map.
package ingest

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Summary counts one ingest run. Failed rows never abort a batch, they are
// logged and carried here.
type Summary struct {
	Total    int
	Inserted int
	Skipped  int
	Failed   int
}

// table is a CSV file loaded whole: a name-to-index header map plus the data
// records. Exports are small (one betting window), so whole-file reads are
// fine.
type table struct {
	header  map[string]int
	records [][]string
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)

	head, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	// Spreadsheet exports lead with a BOM
	if len(head) > 0 {
		head[0] = strings.TrimPrefix(head[0], "\uFEFF")
	}

	header := make(map[string]int, len(head))
	for i, name := range head {
		name = strings.TrimSpace(name)
		if j, ok := header[name]; ok {
			return nil, fmt.Errorf("duplicate csv column %q at %d and %d", name, j, i)
		}
		header[name] = i
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv records: %w", err)
	}

	return &table{header: header, records: records}, nil
}

// require fails when any of the named columns is absent, listing all of them
// at once.
func (t *table) require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if _, ok := t.header[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("csv missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (t *table) cell(record []string, column string) string {
	i, ok := t.header[column]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// floatCell parses an optional numeric cell. Empty, unparseable and NaN
// cells are nil, which lands as NULL.
func (t *table) floatCell(record []string, column string) *float64 {
	s := t.cell(record, column)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

// intCell parses an optional integer cell. Exports write whole numbers in
// float form ("28.0") when the column carried NULLs, so parse through float.
func (t *table) intCell(record []string, column string) *int {
	f := t.floatCell(record, column)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

// matchID reads the required match_id cell.
func (t *table) matchID(record []string) (int, error) {
	f := t.floatCell(record, "match_id")
	if f == nil {
		return 0, fmt.Errorf("missing match_id")
	}
	return int(*f), nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
