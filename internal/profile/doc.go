// Package profile derives a vertical profile of biological scatterers
// (primarily birds) from a weather-radar polar volume.
//
// The pipeline is single threaded and sequential: for every scan, texture is
// computed over the radial-velocity field, weather cells are found and
// analyzed on the reflectivity field, fringe is grown around them, and
// admitted gates are appended to a volume-wide points table keyed by
// altitude layer. Once every scan has been processed, gates are classified
// with a bit-flag code and the profile engine fits a per-layer wind vector
// by singular value decomposition, in three variants processed strictly in
// reverse order.
package profile
