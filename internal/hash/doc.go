// Package hash provides the CRC32-Castagnoli checksums recorded for result
// block files in run manifests.
//
// One-shot:
//
//	sum := hash.CRC32C(data)
//
// Streaming, while a block is written:
//
//	w := hash.NewWriter(dst)
//	io.Copy(w, src)
//	sum := w.Sum32()
package hash
