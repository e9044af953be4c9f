package bulk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/bcnelson/addrscope/internal/domain"
	"gopkg.in/yaml.v3"
)

// Exporter renders a batch of results in one file format.
type Exporter interface {
	Format() string
	ContentType() string
	Extension() string
	Export(results []domain.AnalysisResult, w io.Writer) error
}

var exporters = map[string]Exporter{
	"csv":  csvExporter{},
	"json": jsonExporter{},
	"yaml": yamlExporter{},
}

// ExporterFor returns the exporter for a format name.
func ExporterFor(format string) (Exporter, error) {
	e, ok := exporters[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}
	return e, nil
}

// Formats lists the supported export formats.
func Formats() []string {
	formats := make([]string, 0, len(exporters))
	for f := range exporters {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

var csvHeader = []string{
	"Input",
	"Type",
	"Normalized/CIDR",
	"Classification",
	"Scope",
	"Private",
	"Public",
	"Valid",
	"Notes",
}

// ExportCSV renders results as CSV with a fixed nine column header.
// Free-text columns are always quoted. An empty batch renders as "".
func ExportCSV(results []domain.AnalysisResult) string {
	if len(results) == 0 {
		return ""
	}

	lines := make([]string, 0, len(results)+1)
	lines = append(lines, strings.Join(csvHeader, ","))
	for i := range results {
		lines = append(lines, csvRow(&results[i]))
	}
	return strings.Join(lines, "\n")
}

func csvRow(r *domain.AnalysisResult) string {
	normalized := r.Normalized
	if normalized == "" {
		normalized = r.Input
	}
	classType := "N/A"
	var scope, notes string
	if r.Class != nil {
		if r.Class.Type != "" {
			classType = r.Class.Type
		}
		scope = r.Class.Scope
		notes = r.Class.Range
	}

	return strings.Join([]string{
		quote(r.Input),
		string(TypeOf(r)),
		quote(normalized),
		classType,
		scope,
		yesNo(r.Private()),
		yesNo(r.Public()),
		validity(r.IsValid),
		quote(notes),
	}, ",")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func validity(v *bool) string {
	switch {
	case v == nil:
		return "N/A"
	case *v:
		return "Yes"
	default:
		return "No"
	}
}

// ExportJSON renders results as indented JSON without transformation.
func ExportJSON(results []domain.AnalysisResult) (string, error) {
	if results == nil {
		results = []domain.AnalysisResult{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	return string(data), nil
}

// ExportYAML renders results as YAML using the same field names as JSON.
func ExportYAML(results []domain.AnalysisResult) (string, error) {
	var buf bytes.Buffer
	if err := (yamlExporter{}).Export(results, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type csvExporter struct{}

func (csvExporter) Format() string      { return "csv" }
func (csvExporter) ContentType() string { return "text/csv; charset=utf-8" }
func (csvExporter) Extension() string   { return ".csv" }

func (csvExporter) Export(results []domain.AnalysisResult, w io.Writer) error {
	_, err := io.WriteString(w, ExportCSV(results))
	return err
}

type jsonExporter struct{}

func (jsonExporter) Format() string      { return "json" }
func (jsonExporter) ContentType() string { return "application/json" }
func (jsonExporter) Extension() string   { return ".json" }

func (jsonExporter) Export(results []domain.AnalysisResult, w io.Writer) error {
	out, err := ExportJSON(results)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

type yamlExporter struct{}

func (yamlExporter) Format() string      { return "yaml" }
func (yamlExporter) ContentType() string { return "application/yaml" }
func (yamlExporter) Extension() string   { return ".yaml" }

// Export goes through the JSON encoding so YAML keys match the JSON field
// names and 128-bit integers keep full precision.
func (yamlExporter) Export(results []domain.AnalysisResult, w io.Writer) error {
	if results == nil {
		results = []domain.AnalysisResult{}
	}
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decode results: %w", err)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(yamlNumbers(doc)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}

// yamlNumbers rewrites json.Number leaves into plain scalar nodes so large
// values are emitted unquoted and untagged.
func yamlNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = yamlNumbers(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = yamlNumbers(child)
		}
		return t
	case json.Number:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: t.String()}
	}
	return v
}
