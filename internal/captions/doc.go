// Package captions translates an abstract caption style into the ASS
// force_style parameters understood by ffmpeg's subtitles filter, and escapes
// file paths embedded in filter arguments.
//
// Translation is pure: no I/O, no probing. Canvas-relative margin checks only
// log; malformed colors surface as ErrInvalidColor so callers can fall back to
// TranslateOrDefault.
package captions
