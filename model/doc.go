// Package model provides the in-memory document graph of an EPUB
// publication.
//
// The [Book] type ties together every part of a publication that the
// epubdoc package reads and writes:
//
//	book := model.NewBook()
//	book.Metadata.AddTitle("My Book")
//	book.Metadata.AddAuthor(model.NewAuthor("Jane", "Doe"))
//	ch1 := model.NewResource(data, "chapter1.xhtml")
//	book.AddSection(nil, "Chapter 1", ch1)
//
// # Resources
//
// [Resources] owns every content-bearing entry of the publication, keyed by
// href. All other structures refer to resources by pointer and never own
// them:
//
//   - [Spine] - the linear reading order and the navigation resource
//   - [Guide] - named landmarks such as the cover page
//   - [TableOfContents] - the hierarchical navigation tree
//
// # Metadata
//
// [Metadata] holds the multi-valued Dublin Core fields plus free-form meta
// items. Exactly one [Identifier] may be flagged as the book identifier;
// when none is, the first identifier takes that role. A fresh Metadata
// carries a random UUID identifier that is replaced by the first identifier
// added explicitly.
//
// # Concurrency
//
// A Book is a plain data structure without internal locking. Share it
// between goroutines only under an external lock.
package model
