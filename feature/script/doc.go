// Package script provides script content: the lz4 compressed bytecode
// container and the two-stage loader that reads and verifies it. The
// placeholder and error values are empty scripts, so consumers can always
// run a handle's value.
package script
