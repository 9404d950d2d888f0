// Package bootstrap assembles and runs the saga that brings up a surface.
//
// A surface manifest declares the theme, the panels, and the layout. The
// builder turns it into an ordered saga: theme first, then one step per
// panel going through the resilient factory, then the layout. A failed step
// rolls the whole attempt back, so a surface is either fully bootstrapped or
// not there at all; individual flaky panels degrade to fallback placeholders
// without failing the run unless the manifest marks them required.
package bootstrap
