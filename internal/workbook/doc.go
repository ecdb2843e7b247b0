// Package workbook adapts the spreadsheet codecs used by the merge engine.
//
// Modern .xlsx workbooks are read and written with excelize. Legacy .xls
// workbooks are read-only and only ever consulted for template bootstrap.
// A Book tracks a single append target sheet and the next free row on it,
// so callers only need "open", "append" and "save".
package workbook
