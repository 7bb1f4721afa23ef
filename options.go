package epubkit

import (
	"go.uber.org/zap"

	"github.com/tsawler/epubkit/htmldoc"
)

// ExtractOptions holds configuration for reading and extraction.
type ExtractOptions struct {
	// Chapter selection (1-indexed in API, stored as-is)
	chapters []int

	// Content filtering
	navigation htmldoc.NavigationExclusionMode

	// Reading options
	synthesizeTOC bool
	skipDRMCheck  bool

	logger *zap.Logger
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		chapters:   nil, // nil means all chapters
		navigation: htmldoc.NavigationExclusionStandard,
	}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	newOpts := o
	if o.chapters != nil {
		newOpts.chapters = make([]int, len(o.chapters))
		copy(newOpts.chapters, o.chapters)
	}
	return newOpts
}

func (o ExtractOptions) htmlOptions() htmldoc.ExtractOptions {
	return htmldoc.ExtractOptions{NavigationExclusion: o.navigation}
}
