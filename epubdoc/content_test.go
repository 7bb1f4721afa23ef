package epubdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/epubkit/htmldoc"
)

func TestChapters(t *testing.T) {
	book, _, err := Read(sampleEPUB(t), ReadOptions{})
	require.NoError(t, err)

	chapters := Chapters(book)
	require.Len(t, chapters, 2)
	assert.Equal(t, 0, chapters[0].Index)
	assert.Equal(t, "Introduction", chapters[0].Title)
	assert.Equal(t, "text/chapter1.xhtml", chapters[0].Resource.Href)
	assert.Equal(t, 1, chapters[1].Index)
	assert.Equal(t, "Conclusion", chapters[1].Title)
}

func TestText(t *testing.T) {
	book, _, err := Read(sampleEPUB(t), ReadOptions{})
	require.NoError(t, err)

	text, err := Text(book, htmldoc.DefaultExtractOptions())
	require.NoError(t, err)
	assert.Equal(t, "Introduction\n\nThis is the first chapter.\n\nBackground\n\nSome history.\n\nConclusion\n\nThe end.", text)
}

func TestMarkdown(t *testing.T) {
	book, _, err := Read(sampleEPUB(t), ReadOptions{})
	require.NoError(t, err)

	md, err := Markdown(book, htmldoc.DefaultExtractOptions())
	require.NoError(t, err)
	assert.Contains(t, md, "# Introduction")
	assert.Contains(t, md, "## Background")
	assert.Contains(t, md, "The end.")
	assert.NotContains(t, md, "<p>")
}
