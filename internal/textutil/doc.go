// Package textutil provides small string helpers shared across packages:
// file-name sanitizing and title stems for exported files.
package textutil
