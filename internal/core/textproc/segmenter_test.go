package textproc

import (
	"reflect"
	"strings"
	"testing"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lead kept raw, remainder trimmed and terminated",
			text: "First. Second. Third",
			want: []string{"First", "Second.", "Third."},
		},
		{
			name: "single sentence stays whole",
			text: "Hello world.",
			want: []string{"Hello world."},
		},
		{
			name: "no terminator returns text unmodified",
			text: "  no full stop here \n",
			want: []string{"  no full stop here \n"},
		},
		{
			name: "empty fragments dropped",
			text: "One.. Two. . Three.",
			want: []string{"One", "Two.", "Three."},
		},
		{
			name: "lead keeps surrounding whitespace",
			text: "  Lead text . next one",
			want: []string{"  Lead text ", "next one."},
		},
		{
			name: "empty lead dropped",
			text: ". Only tail",
			want: []string{"Only tail."},
		},
		{
			name: "whitespace-only lead kept verbatim",
			text: "\n\n. x",
			want: []string{"\n\n", "x."},
		},
		{
			name: "decimals are split",
			text: "Pi is 3.14 roughly. Done.",
			want: []string{"Pi is 3", "14 roughly.", "Done."},
		},
		{
			name: "page separators survive inside blocks",
			text: "Intro. Page one ends\n\nPage two. End.",
			want: []string{"Intro", "Page one ends\n\nPage two.", "End."},
		},
		{
			name: "empty text yields no blocks",
			text: "",
			want: []string{},
		},
	}

	seg := NewSegmenter("")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := seg.Segment(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Segment(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSegmentWithExtraTerminators(t *testing.T) {
	seg := NewSegmenter(".?!")
	got := seg.Segment("Why? Because. Wow! tail")
	want := []string{"Why", "Because.", "Wow!", "tail."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Segment() = %q, want %q", got, want)
	}
}

func TestSegmentNeverReturnsEmptyBlocks(t *testing.T) {
	inputs := []string{
		"a.b.c",
		"...",
		". . .",
		"x. \n\n . y",
		"Trailing dot.",
		"\n\n.",
	}
	seg := NewSegmenter("")
	for _, in := range inputs {
		for _, block := range seg.Segment(in) {
			if block == "" {
				t.Fatalf("Segment(%q) produced an empty block", in)
			}
		}
	}
}

func TestSegmentPreservesWordContent(t *testing.T) {
	text := "Alpha beta. Gamma delta. Epsilon. Zeta eta"
	seg := NewSegmenter("")
	blocks := seg.Segment(text)

	var joined []string
	for _, block := range blocks {
		joined = append(joined, strings.Fields(strings.ReplaceAll(block, ".", " "))...)
	}
	want := strings.Fields(strings.ReplaceAll(text, ".", " "))
	if !reflect.DeepEqual(joined, want) {
		t.Fatalf("word content changed: %q vs %q", joined, want)
	}
}
