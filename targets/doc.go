// Package targets selects the target rows of a run and splits them into
// blocks.
//
// A Set is a compressed bitmap of row indices. Sets are built from index
// expressions such as "0-4999,7000" (inclusive ranges) or "0:5000" (half-open
// ranges) and partitioned into contiguous blocks that workers can process
// independently. Concatenating block results in block order reproduces the
// ordering of a sequential run.
package targets
