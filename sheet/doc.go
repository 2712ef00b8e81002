// Package sheet cuts a composite sheet of card faces into one image per card.
//
// A sheet is described by a Grid (how many rows and columns of cells, and how
// big each cell is) and a NamingScheme (which card sits in which cell). The
// actual pixel copying is done by a Cropper, either in-process (DrawCropper)
// or by running an external ImageMagick-style convert binary
// (ConvertCropper).
//
// Extraction is deterministic: the same sheet, grid and naming scheme always
// give the same card images, and WriteAll encodes them to the same bytes.
package sheet
