package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Output formats
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// render writes v in format. Values are normalised through their JSON form
// first so every format uses the API field names.
func render(w io.Writer, format string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	if format == formatJSON {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		_, err = buf.WriteTo(w)
		return err
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	case formatTable, "":
		return renderTable(w, generic)
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

// renderTable prints a list of objects as columns and anything else as
// key/value lines.
func renderTable(w io.Writer, v any) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	switch val := v.(type) {
	case []any:
		if len(val) == 0 {
			fmt.Fprintln(tw, "No records.")
			break
		}
		cols := columns(val)
		fmt.Fprintln(tw, strings.ToUpper(strings.Join(cols, "\t")))
		for _, row := range val {
			obj, _ := row.(map[string]any)
			cells := make([]string, len(cols))
			for i, c := range cols {
				cells[i] = cell(obj[c])
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(tw, "%s:\t%s\n", k, cell(val[k]))
		}
	default:
		fmt.Fprintln(tw, cell(val))
	}
	return tw.Flush()
}

// columns lists the keys of the first row, id first
func columns(rows []any) []string {
	first, ok := rows[0].(map[string]any)
	if !ok {
		return []string{"value"}
	}
	cols := make([]string, 0, len(first))
	for k := range first {
		if k != "id" {
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	if _, ok := first["id"]; ok {
		cols = append([]string{"id"}, cols...)
	}
	return cols
}

func cell(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case map[string]any, []any:
		raw, _ := json.Marshal(val)
		return string(raw)
	default:
		return fmt.Sprint(val)
	}
}
