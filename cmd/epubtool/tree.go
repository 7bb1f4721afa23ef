package main

import (
	"github.com/disiqueira/gotree/v3"

	"github.com/tsawler/epubkit/model"
)

// renderTOC draws the table of contents as a tree rooted at the book title.
func renderTOC(book *model.Book) string {
	root := gotree.New(book.Title())
	addTOCNodes(root, book.TOC.References())
	return root.Print()
}

func addTOCNodes(parent gotree.Tree, refs []*model.TOCReference) {
	for _, ref := range refs {
		label := ref.Title
		if href := ref.CompleteHref(); href != "" {
			label += " (" + href + ")"
		}
		addTOCNodes(parent.Add(label), ref.Children)
	}
}
