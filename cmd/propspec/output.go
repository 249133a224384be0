package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gnana997/propspec/pkg/props"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

func validateFormat(format string) error {
	switch format {
	case formatJSON, formatTable:
		return nil
	}
	return fmt.Errorf("unknown format %q (want json or table)", format)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writePropsTable prints props as an aligned table with union values on a
// second line.
func writePropsTable(w io.Writer, title string, list []props.Prop) {
	if len(list) == 0 {
		fmt.Fprintf(w, "%s  (no props)\n", title)
		return
	}

	fmt.Fprintln(w, title)

	// Compute column widths.
	nameW := len("NAME")
	typeW := len("TYPE")
	defW := len("DEFAULT")
	for _, p := range list {
		nameW = max(nameW, len(p.Name))
		typeW = max(typeW, len(p.Type))
		defW = max(defW, len(formatDefault(p.AssignedValue)))
	}

	// Header row.
	fmt.Fprintf(w, "  %-*s  %-*s  %-*s\n", nameW, "NAME", typeW, "TYPE", defW, "DEFAULT")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("-", nameW+typeW+defW+4))

	for _, p := range list {
		fmt.Fprintf(w, "  %-*s  %-*s  %s\n", nameW, p.Name, typeW, p.Type, formatDefault(p.AssignedValue))
		if len(p.Values) > 0 {
			fmt.Fprintf(w, "  %s  values: %s\n", strings.Repeat(" ", nameW), strings.Join(p.Values, " | "))
		}
	}
}

func formatDefault(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return strconv.Quote(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
