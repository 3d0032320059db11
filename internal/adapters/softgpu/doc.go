// Package softgpu is a software stand-in for the graphics stack: a
// registry of shared RGBA textures guarded by keyed mutexes, an output
// surface that composites and presents them, a desktop window, and a
// compositor that drives a virtual display at a fixed refresh rate.
package softgpu
