// Package utils hosts build-tagged acceleration hookups. Building with
// the netlib tag (and cgo) swaps gonum's native BLAS for an OpenBLAS
// backed implementation, which speeds up the dense LU factorization on
// large meshes.
package utils
