package epubkit_test

import (
	"fmt"
	"log"
	"os"

	"github.com/tsawler/epubkit"
	"github.com/tsawler/epubkit/htmldoc"
	"github.com/tsawler/epubkit/model"
)

// These examples verify the README code samples compile correctly.
// They are not meant to be run as actual tests since they require files.

func Example_extractText() {
	text, warnings, err := epubkit.Open("book.epub").Text()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(text)

	for _, w := range warnings {
		fmt.Println("Warning:", w.Message)
	}
}

func Example_extractWithOptions() {
	md, warnings, err := epubkit.Open("book.epub").
		Chapters(1, 2, 3).
		ExcludeNavigation(htmldoc.NavigationExclusionAggressive).
		SynthesizeTOC().
		ToMarkdown()
	_ = md
	_ = warnings
	_ = err
}

func Example_createBook() {
	book := epubkit.New("Field Notes")
	book.Metadata.AddAuthor(model.NewAuthor("Mary", "Anning"))

	chapter := model.NewResource([]byte(`<html xmlns="http://www.w3.org/1999/xhtml"><body><h1>Lyme Regis</h1></body></html>`), "chapter1.xhtml")
	if _, err := book.AddSection(nil, "Lyme Regis", chapter); err != nil {
		log.Fatal(err)
	}

	f, err := os.Create("notes.epub")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	if _, err := epubkit.FromBook(book).Write(f); err != nil {
		log.Fatal(err)
	}
}
