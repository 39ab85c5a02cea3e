// Package utils holds loose value conversions used by the source adapters,
// where the same field may arrive as a number, a numeric string, or a string
// with a unit suffix.
package utils
