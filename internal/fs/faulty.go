package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// ErrInjected is the error returned by injected faults without an Err.
var ErrInjected = errors.New("fs: injected fault")

// Op is a set of file operations a Fault applies to.
type Op uint8

const (
	OpRead Op = 1 << iota
	OpWrite
	OpSync
	OpClose
	OpRename
)

// Fault makes the selected operations fail.
type Fault struct {
	Ops Op
	// AfterBytes lets writes through until that many bytes were written.
	AfterBytes int64
	Err        error
}

func (f Fault) has(op Op) bool { return f.Ops&op != 0 }

func (f Fault) err() error {
	if f.Err != nil {
		return f.Err
	}
	return ErrInjected
}

type rule struct {
	pattern string
	fault   Fault
}

// FaultyFS wraps a FileSystem and fails operations on files whose name
// contains a rule's pattern. The first matching rule wins.
type FaultyFS struct {
	base FileSystem

	mu    sync.Mutex
	rules []rule
}

// NewFaultyFS wraps base, or Default if base is nil.
func NewFaultyFS(base FileSystem) *FaultyFS {
	if base == nil {
		base = Default
	}
	return &FaultyFS{base: base}
}

// AddRule appends a rule.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{pattern: pattern, fault: fault})
}

// ClearRules removes all rules.
func (f *FaultyFS) ClearRules() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = nil
}

func (f *FaultyFS) match(name string) (Fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rules {
		if strings.Contains(name, r.pattern) {
			return r.fault, true
		}
	}
	return Fault{}, false
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	file, err := f.base.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	fault, ok := f.match(name)
	if !ok {
		return file, nil
	}
	return &faultyFile{File: file, fault: fault}, nil
}

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	if fault, ok := f.match(newpath); ok && fault.has(OpRename) {
		return fault.err()
	}
	return f.base.Rename(oldpath, newpath)
}

func (f *FaultyFS) Remove(name string) error { return f.base.Remove(name) }

func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error { return f.base.MkdirAll(path, perm) }

func (f *FaultyFS) ReadDir(name string) ([]os.DirEntry, error) { return f.base.ReadDir(name) }

type faultyFile struct {
	File
	fault   Fault
	written int64
}

func (ff *faultyFile) Read(p []byte) (int, error) {
	if ff.fault.has(OpRead) {
		return 0, ff.fault.err()
	}
	return ff.File.Read(p)
}

func (ff *faultyFile) Write(p []byte) (int, error) {
	if ff.fault.has(OpWrite) && ff.written+int64(len(p)) > ff.fault.AfterBytes {
		return 0, ff.fault.err()
	}
	n, err := ff.File.Write(p)
	ff.written += int64(n)
	return n, err
}

func (ff *faultyFile) Sync() error {
	if ff.fault.has(OpSync) {
		return ff.fault.err()
	}
	return ff.File.Sync()
}

func (ff *faultyFile) Close() error {
	err := ff.File.Close()
	if ff.fault.has(OpClose) {
		return ff.fault.err()
	}
	return err
}
