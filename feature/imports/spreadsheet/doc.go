// Package spreadsheet reads vulnerability exports laid out one finding per
// row, either as an .xlsx workbook or as CSV with the same header.
//
// Required headers are Hostname and Vulnerability ID. Empty cells are read
// as absent values. A row whose severity or days-open cell cannot be read is
// reported as a warning and the rest of the file is still parsed.
package spreadsheet
