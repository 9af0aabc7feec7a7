//go:build cuda

package kernels

const cudaLinked = true
