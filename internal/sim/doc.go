// Package sim abstracts the external simulation kit.
//
// Kit is the seam the launcher drives; ProcessKit is the production
// implementation that runs the vendor kit executable headless with the
// livestream settings baked into its argument vector. The kit's own render
// loop, WebRTC server, and extensions are opaque to this package.
package sim
