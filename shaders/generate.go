// Package shaders holds the triangle's GLSL sources. The compiled SPIR-V is
// read from disk at startup; run go generate with glslc on the PATH to
// rebuild it.
package shaders

//go:generate glslc shader.vert -o vert.spv
//go:generate glslc shader.frag -o frag.spv
