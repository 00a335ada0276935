// Package table reads expression matrices from CSV and reads and writes
// candidate result tables.
//
// An expression CSV has a header row whose first column names the gene
// identifier ("Geneid" by default) and whose remaining columns name the
// samples. A result CSV has the header "ID", "ndiv" followed by one ratio
// column per sample of the all range.
package table
