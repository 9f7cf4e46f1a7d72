// Package texture provides texture content: the cooked container codec, the
// render device abstraction and the multi-stage loader that moves a texture
// from disk (or the network cache) through decode and device creation.
//
// Textures cooked with more than one mip level load progressively: the
// smallest level publishes first and each following level republishes the
// texture with one more level, so a handle's value improves in resolution
// while the load runs.
package texture
