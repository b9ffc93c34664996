// Package fs provides filesystem abstractions for the cache spill directory.
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection (simulate I/O errors)
//
// Production code uses fs.Default:
//
//	file, err := fs.Default.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
//
// Tests inject [FaultyFS] to simulate failing spill writes or reads:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".spill", fs.Fault{Ops: fs.OpRead | fs.OpWrite})
//
// Filesystem calls take no context.Context. Local file operations are not
// interruptible at the syscall level.
package fs
