// Package language normalizes language codes and names for export targets.
//
// Conversions between ISO 639-1, ISO 639-2, and display names live here so
// that transcription, translation, and output naming agree on a single
// spelling for each language. Codes outside the curated table are validated
// and named through golang.org/x/text.
package language
