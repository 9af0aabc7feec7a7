//go:build !cuda

package kernels

const cudaLinked = false
