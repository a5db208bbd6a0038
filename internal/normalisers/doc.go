// Package normalisers provides implementations of the Extractor interface
// for various document formats. Each extractor knows how to turn a file
// with a specific extension into pages of text.
//
// Extractors are registered with the Registry at startup.
package normalisers
