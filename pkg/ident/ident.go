// Package ident normalizes ClickHouse identifiers into canonical
// `database.table` or `table` form.
package ident

import "strings"

// Clean strips one layer of identifier quoting (backticks, double quotes,
// or a bracket pair) from the ends of s and collapses doubled quote
// characters. Cleaning an already-clean identifier returns it unchanged.
func Clean(s string) string {
	s = strings.TrimSpace(s)

	if len(s) > 0 {
		switch s[0] {
		case '`', '"', '[':
			s = s[1:]
		}
	}
	if len(s) > 0 {
		switch s[len(s)-1] {
		case '`', '"', ']':
			s = s[:len(s)-1]
		}
	}

	// ClickHouse escapes quotes inside quoted identifiers by doubling.
	s = strings.ReplaceAll(s, "``", "`")
	s = strings.ReplaceAll(s, `""`, `"`)
	return s
}

// SplitQualified splits `db.table` into its database and table parts,
// cleaning each independently. An unqualified name yields an empty
// database. Names with more than one separator are treated as unqualified;
// three-part naming is not resolved here.
func SplitQualified(name string) (db, table string) {
	name = strings.TrimSpace(name)
	parts := strings.Split(name, ".")
	if len(parts) == 2 {
		return Clean(parts[0]), Clean(parts[1])
	}
	return "", Clean(name)
}

// Normalize returns `db.table` when the name carries an explicit database
// or a default is supplied, and the bare table name otherwise.
func Normalize(raw, defaultDB string) string {
	db, table := SplitQualified(raw)
	if db != "" {
		return db + "." + table
	}
	if defaultDB != "" {
		return defaultDB + "." + table
	}
	return table
}
