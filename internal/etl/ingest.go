package etl

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pathforge/rolegraph/internal/rolegraph"
	"github.com/pathforge/rolegraph/internal/types"
)

// Readers turn seed files into upsert payloads. CSV and JSON are supported,
// dispatched on file extension. Blank cells become nil pointers, never empty
// strings, so a partial seed file cannot blank out fields already in the
// graph.

// ReadRoles parses a roles seed file.
func ReadRoles(path string) ([]rolegraph.RoleUpsert, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var rows []roleRow
		if err := readJSONFile(path, &rows); err != nil {
			return nil, err
		}
		upserts := make([]rolegraph.RoleUpsert, 0, len(rows))
		for i, row := range rows {
			upsert, err := row.toUpsert(i)
			if err != nil {
				return nil, err
			}
			upserts = append(upserts, upsert)
		}
		return upserts, nil
	case ".csv":
		return readRolesCSV(path)
	default:
		return nil, types.NewError(types.ETL_PARSE_FAILED,
			fmt.Sprintf("unsupported file type %q (want .csv or .json)", filepath.Ext(path)))
	}
}

// ReadCompetencies parses a competencies seed file.
func ReadCompetencies(path string) ([]rolegraph.CompetencyUpsert, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var rows []competencyRow
		if err := readJSONFile(path, &rows); err != nil {
			return nil, err
		}
		upserts := make([]rolegraph.CompetencyUpsert, 0, len(rows))
		for i, row := range rows {
			upsert, err := row.toUpsert(i)
			if err != nil {
				return nil, err
			}
			upserts = append(upserts, upsert)
		}
		return upserts, nil
	case ".csv":
		return readCompetenciesCSV(path)
	default:
		return nil, types.NewError(types.ETL_PARSE_FAILED,
			fmt.Sprintf("unsupported file type %q (want .csv or .json)", filepath.Ext(path)))
	}
}

// ReadRequires parses a role-requires-competency seed file.
func ReadRequires(path string) ([]rolegraph.RequiresUpsert, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var rows []requiresRow
		if err := readJSONFile(path, &rows); err != nil {
			return nil, err
		}
		upserts := make([]rolegraph.RequiresUpsert, 0, len(rows))
		for i, row := range rows {
			upsert, err := row.toUpsert(i)
			if err != nil {
				return nil, err
			}
			upserts = append(upserts, upsert)
		}
		return upserts, nil
	case ".csv":
		return readRequiresCSV(path)
	default:
		return nil, types.NewError(types.ETL_PARSE_FAILED,
			fmt.Sprintf("unsupported file type %q (want .csv or .json)", filepath.Ext(path)))
	}
}

// ReadAdjacency parses a role-adjacency seed file.
func ReadAdjacency(path string) ([]rolegraph.AdjacencyUpsert, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var rows []adjacencyRow
		if err := readJSONFile(path, &rows); err != nil {
			return nil, err
		}
		upserts := make([]rolegraph.AdjacencyUpsert, 0, len(rows))
		for i, row := range rows {
			upsert, err := row.toUpsert(i)
			if err != nil {
				return nil, err
			}
			upserts = append(upserts, upsert)
		}
		return upserts, nil
	case ".csv":
		return readAdjacencyCSV(path)
	default:
		return nil, types.NewError(types.ETL_PARSE_FAILED,
			fmt.Sprintf("unsupported file type %q (want .csv or .json)", filepath.Ext(path)))
	}
}

type roleRow struct {
	ID          string         `json:"id"`
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	Source      *string        `json:"source"`
	Version     *string        `json:"version"`
}

func (r roleRow) toUpsert(index int) (rolegraph.RoleUpsert, error) {
	if r.ID == "" {
		return rolegraph.RoleUpsert{}, rowError(index, "id")
	}
	return rolegraph.RoleUpsert{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Metadata:    r.Metadata,
		Source:      r.Source,
		Version:     r.Version,
	}, nil
}

type competencyRow struct {
	ID         string         `json:"id"`
	Name       *string        `json:"name"`
	Definition *string        `json:"definition"`
	Metadata   map[string]any `json:"metadata"`
	Source     *string        `json:"source"`
	Version    *string        `json:"version"`
}

func (r competencyRow) toUpsert(index int) (rolegraph.CompetencyUpsert, error) {
	if r.ID == "" {
		return rolegraph.CompetencyUpsert{}, rowError(index, "id")
	}
	return rolegraph.CompetencyUpsert{
		ID:         r.ID,
		Name:       r.Name,
		Definition: r.Definition,
		Metadata:   r.Metadata,
		Source:     r.Source,
		Version:    r.Version,
	}, nil
}

type requiresRow struct {
	RoleID        string  `json:"roleId"`
	CompetencyID  string  `json:"competencyId"`
	RequiredLevel *string `json:"requiredLevel"`
	Version       *string `json:"version"`
	Source        *string `json:"source"`
	ValidFrom     *string `json:"validFrom"`
	ValidTo       *string `json:"validTo"`
}

func (r requiresRow) toUpsert(index int) (rolegraph.RequiresUpsert, error) {
	if r.RoleID == "" {
		return rolegraph.RequiresUpsert{}, rowError(index, "roleId")
	}
	if r.CompetencyID == "" {
		return rolegraph.RequiresUpsert{}, rowError(index, "competencyId")
	}
	return rolegraph.RequiresUpsert{
		RoleID:        r.RoleID,
		CompetencyID:  r.CompetencyID,
		RequiredLevel: r.RequiredLevel,
		Version:       r.Version,
		Source:        r.Source,
		ValidFrom:     r.ValidFrom,
		ValidTo:       r.ValidTo,
	}, nil
}

type adjacencyRow struct {
	RoleA     string   `json:"roleA"`
	RoleB     string   `json:"roleB"`
	Score     *float64 `json:"score"`
	Rationale *string  `json:"rationale"`
	Version   *string  `json:"version"`
	Source    *string  `json:"source"`
	// Bidirectional defaults to true when omitted: adjacency seeds are
	// mirrored edges unless a row opts out explicitly.
	Bidirectional *bool `json:"bidirectional"`
}

func (r adjacencyRow) toUpsert(index int) (rolegraph.AdjacencyUpsert, error) {
	if r.RoleA == "" {
		return rolegraph.AdjacencyUpsert{}, rowError(index, "roleA")
	}
	if r.RoleB == "" {
		return rolegraph.AdjacencyUpsert{}, rowError(index, "roleB")
	}

	bidirectional := true
	if r.Bidirectional != nil {
		bidirectional = *r.Bidirectional
	}
	return rolegraph.AdjacencyUpsert{
		RoleA:         r.RoleA,
		RoleB:         r.RoleB,
		Score:         r.Score,
		Rationale:     r.Rationale,
		Version:       r.Version,
		Source:        r.Source,
		Bidirectional: bidirectional,
	}, nil
}

func rowError(index int, column string) error {
	return types.NewError(types.ETL_MISSING_COLUMN,
		fmt.Sprintf("row %d: missing required value %q", index+1, column))
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.WrapError(types.ETL_READ_FAILED, "failed to read seed file", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return types.WrapError(types.ETL_PARSE_FAILED, "failed to parse JSON seed file", err)
	}
	return nil
}

// csvTable is a parsed CSV file with normalized headers. Header matching is
// exact after trim and lower-case.
type csvTable struct {
	columns map[string]int
	rows    [][]string
}

func readCSVFile(path string, required ...string) (*csvTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.WrapError(types.ETL_READ_FAILED, "failed to open seed file", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, types.NewError(types.ETL_PARSE_FAILED, "seed file is empty")
	}
	if err != nil {
		return nil, types.WrapError(types.ETL_PARSE_FAILED, "failed to parse CSV header", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, types.NewError(types.ETL_MISSING_COLUMN,
				fmt.Sprintf("missing required column %q", name))
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, types.WrapError(types.ETL_PARSE_FAILED, "failed to parse CSV rows", err)
	}
	return &csvTable{columns: columns, rows: rows}, nil
}

// cell returns the trimmed value at (row, column), "" when the column is
// absent or the row too short.
func (t *csvTable) cell(row []string, column string) string {
	idx, ok := t.columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// cellPtr is cell with blank mapped to nil, preserving coalesce semantics.
func (t *csvTable) cellPtr(row []string, column string) *string {
	value := t.cell(row, column)
	if value == "" {
		return nil
	}
	return &value
}

func readRolesCSV(path string) ([]rolegraph.RoleUpsert, error) {
	table, err := readCSVFile(path, "id")
	if err != nil {
		return nil, err
	}

	upserts := make([]rolegraph.RoleUpsert, 0, len(table.rows))
	for i, row := range table.rows {
		id := table.cell(row, "id")
		if id == "" {
			return nil, rowError(i, "id")
		}
		upserts = append(upserts, rolegraph.RoleUpsert{
			ID:          id,
			Name:        table.cellPtr(row, "name"),
			Description: table.cellPtr(row, "description"),
			Source:      table.cellPtr(row, "source"),
			Version:     table.cellPtr(row, "version"),
		})
	}
	return upserts, nil
}

func readCompetenciesCSV(path string) ([]rolegraph.CompetencyUpsert, error) {
	table, err := readCSVFile(path, "id")
	if err != nil {
		return nil, err
	}

	upserts := make([]rolegraph.CompetencyUpsert, 0, len(table.rows))
	for i, row := range table.rows {
		id := table.cell(row, "id")
		if id == "" {
			return nil, rowError(i, "id")
		}
		upserts = append(upserts, rolegraph.CompetencyUpsert{
			ID:         id,
			Name:       table.cellPtr(row, "name"),
			Definition: table.cellPtr(row, "definition"),
			Source:     table.cellPtr(row, "source"),
			Version:    table.cellPtr(row, "version"),
		})
	}
	return upserts, nil
}

func readRequiresCSV(path string) ([]rolegraph.RequiresUpsert, error) {
	table, err := readCSVFile(path, "role_id", "competency_id")
	if err != nil {
		return nil, err
	}

	upserts := make([]rolegraph.RequiresUpsert, 0, len(table.rows))
	for i, row := range table.rows {
		roleID := table.cell(row, "role_id")
		competencyID := table.cell(row, "competency_id")
		if roleID == "" {
			return nil, rowError(i, "role_id")
		}
		if competencyID == "" {
			return nil, rowError(i, "competency_id")
		}
		upserts = append(upserts, rolegraph.RequiresUpsert{
			RoleID:        roleID,
			CompetencyID:  competencyID,
			RequiredLevel: table.cellPtr(row, "required_level"),
			Version:       table.cellPtr(row, "version"),
			Source:        table.cellPtr(row, "source"),
			ValidFrom:     table.cellPtr(row, "valid_from"),
			ValidTo:       table.cellPtr(row, "valid_to"),
		})
	}
	return upserts, nil
}

func readAdjacencyCSV(path string) ([]rolegraph.AdjacencyUpsert, error) {
	table, err := readCSVFile(path, "role_a", "role_b")
	if err != nil {
		return nil, err
	}

	upserts := make([]rolegraph.AdjacencyUpsert, 0, len(table.rows))
	for i, row := range table.rows {
		roleA := table.cell(row, "role_a")
		roleB := table.cell(row, "role_b")
		if roleA == "" {
			return nil, rowError(i, "role_a")
		}
		if roleB == "" {
			return nil, rowError(i, "role_b")
		}

		var score *float64
		if raw := table.cell(row, "score"); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, types.WrapError(types.ETL_PARSE_FAILED,
					fmt.Sprintf("row %d: invalid score %q", i+1, raw), err)
			}
			score = &parsed
		}

		// Absent column or blank cell means mirrored, matching the JSON path.
		bidirectional := true
		if raw := table.cell(row, "bidirectional"); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, types.WrapError(types.ETL_PARSE_FAILED,
					fmt.Sprintf("row %d: invalid bidirectional flag %q", i+1, raw), err)
			}
			bidirectional = parsed
		}

		upserts = append(upserts, rolegraph.AdjacencyUpsert{
			RoleA:         roleA,
			RoleB:         roleB,
			Score:         score,
			Rationale:     table.cellPtr(row, "rationale"),
			Version:       table.cellPtr(row, "version"),
			Source:        table.cellPtr(row, "source"),
			Bidirectional: bidirectional,
		})
	}
	return upserts, nil
}
