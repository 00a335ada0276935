// Package mmap maps local input files read-only so that large expression
// matrices are parsed straight from the page cache:
//
//	f, err := mmap.Open("counts.csv")
//	if err != nil { ... }
//	defer f.Close()
//
//	_ = f.Advise(mmap.Sequential)
//	m, err := table.ReadMatrix(f.Reader(), table.ReadOptions{})
//
// Unix platforms use mmap(2) and madvise(2). Windows uses
// CreateFileMapping/MapViewOfFile and ignores hints.
package mmap
