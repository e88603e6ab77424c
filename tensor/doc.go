// Package tensor provides vectors, matrices and rank-3/4 tensors over
// reference-counted segments.
//
// Every tensor value is a Shape plus one segment in row-major order. Views
// such as Matrix.GetRow, Matrix.GetColumn, Tensor3D.Matrix and Reshape share
// the underlying memory and hold their own reference; release every tensor
// you obtain. Arithmetic delegates to an engine.Engine and returns new
// pooled tensors.
//
// # Binary Format
//
// WriteTo and Read use a little-endian layout:
//
//	int32   dimension count (1..4)
//	uint32  size of each dimension
//	T...    elements in row-major order
//
// The element kind is not part of the blob; ReadAny takes it from the caller.
package tensor
