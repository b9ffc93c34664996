// Package mmap maps dataset files read-only into memory.
//
//	m, err := mmap.Open("sst.nc")
//	if err != nil { ... }
//	defer m.Close()
//	n, err := m.ReadAt(buf, off)
//
// Close is idempotent, but callers must not use slices returned by Bytes
// after Close returns.
package mmap
