// Package analyze derives heuristic metadata from decoded images.
//
// [Describe] produces a one-line description built from the image's size
// class, orientation, dominant color count and a coarse content hint:
//
//	Medium landscape photographic or complex image (800x400 pixels) with complex color palette
//
// [ClassifyContent] sorts an image into chart/diagram/text or
// photograph/illustration by how much of it is near-black or near-white.
//
// Both are pure functions of their inputs. Neither panics or returns an
// error: description failures are reported inside the returned string and
// classification failures as [ContentUnknown]. The judgments are
// heuristics and carry no accuracy guarantee.
package analyze
