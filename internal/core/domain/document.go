package domain

import (
	"strings"
	"time"
)

// Upload is one raw document handed over by the host. Body is consumed once.
type Upload struct {
	Filename string
	MimeType string
	Body     []byte
}

// Extraction is the per-page output of a PageTextExtractor. A page that could
// not be read is kept as an empty string so page indexes stay aligned.
type Extraction struct {
	Pages       []string `json:"pages"`
	Diagnostics []string `json:"diagnostics,omitempty"`
	Complete    bool     `json:"complete"`
}

// DocumentDigest is the assembled and segmented form of the active document.
type DocumentDigest struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	MimeType    string    `json:"mime_type"`
	SizeBytes   int64     `json:"size_bytes"`
	PageCount   int       `json:"page_count"`
	Text        string    `json:"text"`
	Blocks      []string  `json:"blocks"`
	Diagnostics []string  `json:"diagnostics,omitempty"`
	Complete    bool      `json:"complete"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

func (d DocumentDigest) WordCount() int {
	return CountWords(d.Text)
}

func (d DocumentDigest) clone() DocumentDigest {
	out := d
	out.Blocks = append([]string(nil), d.Blocks...)
	out.Diagnostics = append([]string(nil), d.Diagnostics...)
	return out
}

// CountWords counts whitespace separated fields.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// VisibleBlocks returns the leading blocks a consumer asked to render.
// n <= 0 selects every block; otherwise n is clamped to [1, len(blocks)].
func VisibleBlocks(blocks []string, n int) []string {
	total := len(blocks)
	if total == 0 {
		return []string{}
	}
	if n <= 0 || n > total {
		n = total
	}
	return append([]string(nil), blocks[:n]...)
}
