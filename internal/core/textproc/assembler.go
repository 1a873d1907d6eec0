// Package textproc holds the pure text stages of the digest pipeline:
// page assembly, sentence segmentation and summary length bounds.
package textproc

import "strings"

// PageSeparator is placed between consecutive pages.
const PageSeparator = "\n\n"

// Assemble joins page texts in page order. Whitespace is left untouched.
func Assemble(pages []string) string {
	return strings.Join(pages, PageSeparator)
}
