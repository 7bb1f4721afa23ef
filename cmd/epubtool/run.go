package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/tsawler/epubkit"
	"github.com/tsawler/epubkit/epubdoc"
	"github.com/tsawler/epubkit/mediatype"
	"github.com/tsawler/epubkit/model"
)

// run executes one command line and returns the process exit code.
func run(args []string, out, errOut io.Writer) int {
	req, err := parseFlags(args, errOut)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return 0
	case err != nil:
		fmt.Fprintf(errOut, "%s\nUsage help: epubtool -h\n", err)
		return 2
	}

	log, err := req.logger()
	if err != nil {
		fmt.Fprintf(errOut, "cannot create logger: %s\n", err)
		return 1
	}
	defer log.Sync() //nolint:errcheck

	warnings, err := execute(req, log, out)
	if len(warnings) > 0 && !req.quiet && !req.verbose {
		fmt.Fprint(errOut, epubkit.FormatWarnings(warnings))
	}
	if err != nil {
		log.Error("action failed", zap.String("action", req.action), zap.Error(err))
		fmt.Fprintf(errOut, "epubtool %s: %s\n", req.action, err)
		return 1
	}
	return 0
}

func execute(req *cliRequest, log *zap.Logger, out io.Writer) ([]epubkit.Warning, error) {
	ext := epubkit.Open(req.input).Logger(log)

	switch req.action {
	case "info":
		book, warnings, err := ext.Book()
		if err != nil {
			return warnings, err
		}
		printInfo(out, book)
		return warnings, nil

	case "toc":
		if req.synthesize {
			ext = ext.SynthesizeTOC()
		}
		book, warnings, err := ext.Book()
		if err != nil {
			return warnings, err
		}
		fmt.Fprint(out, renderTOC(book))
		return warnings, nil

	case "text", "markdown":
		ext = ext.Chapters(req.chapters...).ExcludeNavigation(req.navigation)
		if req.skipDRM {
			ext = ext.SkipDRMCheck()
		}
		var (
			s        string
			warnings []epubkit.Warning
			err      error
		)
		if req.action == "text" {
			s, warnings, err = ext.Text()
		} else {
			s, warnings, err = ext.ToMarkdown()
		}
		if err != nil {
			return warnings, err
		}
		fmt.Fprintln(out, s)
		return warnings, nil

	case "repack":
		book, warnings, err := ext.Book()
		if err != nil {
			return warnings, err
		}
		writeWarnings, err := epubdoc.WriteFile(req.output, book, epubdoc.WriteOptions{Logger: log, Compression: req.level})
		return append(warnings, writeWarnings...), err
	}
	return nil, fmt.Errorf("unknown action %q", req.action)
}

func printInfo(out io.Writer, book *model.Book) {
	md := book.Metadata
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(out, "%-12s %s\n", label+":", value)
		}
	}

	row("Title", book.Title())
	var authors []string
	for _, a := range md.Authors {
		authors = append(authors, a.DisplayName())
	}
	row("Authors", strings.Join(authors, ", "))
	row("Language", md.Language)
	if id := md.BookIdentifier(); id != nil {
		row("Identifier", id.String())
	}
	row("Publisher", strings.Join(md.Publishers, ", "))
	for _, d := range md.Dates {
		label := "Date"
		if d.Event != "" {
			label = "Date (" + d.Event + ")"
		}
		row(label, d.Value)
	}
	row("Resources", fmt.Sprint(book.Resources.Size()))
	row("Spine", fmt.Sprintf("%d items", book.Spine.Size()))
	row("Contents", fmt.Sprintf("%d entries, depth %d", book.TOC.Size(), book.TOC.Depth()))
	if r := book.CoverPage(); r != nil {
		row("Cover page", r.Href)
	}
	if r := book.CoverImage(); r != nil {
		cover := r.Href
		if img, err := mediatype.DecodeImageInfo(r.Data); err == nil {
			cover = fmt.Sprintf("%s (%s, %dx%d)", r.Href, img.Format, img.Width, img.Height)
		}
		row("Cover image", cover)
	}
}
