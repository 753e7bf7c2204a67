// Package export writes episodes out of the store: animated GIFs and PNG
// frames of the rendered scene, JSON dumps and SVG pole-tip paths.
package export
