// Package htmldoc extracts titles, plain text and Markdown from the XHTML
// content documents of a publication.
package htmldoc

// NavigationExclusionMode controls how navigation, landmarks and page
// furniture are filtered out of extracted content.
type NavigationExclusionMode int

const (
	// NavigationExclusionNone includes all content without filtering.
	NavigationExclusionNone NavigationExclusionMode = iota

	// NavigationExclusionExplicit skips only explicit markup: <nav>, <aside>,
	// ARIA navigation roles and structural epub:type values such as "toc",
	// "landmarks", "page-list" and "pagebreak". <header> and <footer> are
	// only skipped when they are direct children of <body> or of a single
	// top-level wrapper element.
	NavigationExclusionExplicit

	// NavigationExclusionStandard (default) adds class/id pattern matching
	// for running heads, page numbers, menus and similar furniture that
	// converters emit without semantic markup.
	NavigationExclusionStandard

	// NavigationExclusionAggressive adds link-density heuristics. Blocks
	// made almost entirely of links are excluded, which may drop link-heavy
	// index or bibliography pages.
	NavigationExclusionAggressive
)

// ExtractOptions configures content extraction.
type ExtractOptions struct {
	NavigationExclusion NavigationExclusionMode
}

// DefaultExtractOptions returns the options used by Text and Markdown.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{NavigationExclusion: NavigationExclusionStandard}
}
