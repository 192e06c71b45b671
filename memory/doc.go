// Package memory provides reference-counted memory sources and untyped views over them.
//
// A Source owns one contiguous buffer of a single element type. Views never
// copy: they pin the source, read and write through it, and release the pin
// when they are done. The buffer is freed exactly once, when the last pin is
// released.
//
//	buf := memory.NewBuffer(make([]float64, 1024))
//	h := buf.Pin(0)          // refs: 1
//	vec := buf.Vec()         // untyped view, no ownership
//	values, _ := memory.Elems[float64](vec)
//	h.Release()              // refs: 0, buffer freed
//
// Vec is the untyped view used by the storage package; Elems recovers the
// typed slice without reflection.
package memory
