package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tsawler/epubkit/htmldoc"
)

type cliRequest struct {
	verbose bool
	quiet   bool
	action  string
	input   string

	// action flags
	chapters   []int
	navigation htmldoc.NavigationExclusionMode
	synthesize bool
	skipDRM    bool
	output     string
	level      int
}

var errUsage = errors.New("usage error")

const usage = `
Usage:
   epubtool [-v|-q] [-h] <ACTION> [FLAG] FILE

 ACTIONs:  info  toc  text  markdown  repack

`

var navigationModes = map[string]htmldoc.NavigationExclusionMode{
	"none":       htmldoc.NavigationExclusionNone,
	"explicit":   htmldoc.NavigationExclusionExplicit,
	"standard":   htmldoc.NavigationExclusionStandard,
	"aggressive": htmldoc.NavigationExclusionAggressive,
}

func parseFlags(args []string, errOut io.Writer) (*cliRequest, error) {
	flags := flag.NewFlagSet("epubtool", flag.ContinueOnError)
	flags.SetOutput(errOut)
	flags.Usage = func() {
		fmt.Fprint(errOut, usage)
		flags.PrintDefaults()
		fmt.Fprint(errOut, "\n Action help:\n    epubtool <ACTION> -h\n\n")
	}

	req := &cliRequest{}
	flags.BoolVar(&req.verbose, "v", false, "Log debug output and warnings as they happen (verbose mode)")
	flags.BoolVar(&req.quiet, "q", false, "Do not print warnings (quiet mode)")
	if err := flags.Parse(args); err != nil {
		return nil, usageError(err)
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return nil, fmt.Errorf("%w: no action given", errUsage)
	}
	if req.verbose && req.quiet {
		return nil, fmt.Errorf("%w: quiet mode and verbose mode are mutually exclusive", errUsage)
	}

	req.action = flags.Arg(0)
	actionFlags := flag.NewFlagSet(req.action, flag.ContinueOnError)
	actionFlags.SetOutput(errOut)

	var chapters, navigation string
	switch req.action {
	case "info":
	case "toc":
		actionFlags.BoolVar(&req.synthesize, "synthesize", false, "Build a table of contents from the reading order when none exists")
	case "text", "markdown":
		actionFlags.StringVar(&chapters, "chapters", "", "Comma separated chapter numbers to extract (default all)")
		actionFlags.StringVar(&navigation, "nav", "standard", "Navigation filtering: none, explicit, standard or aggressive")
		actionFlags.BoolVar(&req.skipDRM, "skip-drm-check", false, "Extract from publications carrying DRM markers")
	case "repack":
		actionFlags.StringVar(&req.output, "o", "", "Output file (required)")
		actionFlags.IntVar(&req.level, "level", 0, "Deflate compression level 1-9 (default library level)")
	default:
		return nil, fmt.Errorf("%w: unknown action %q", errUsage, req.action)
	}

	if err := actionFlags.Parse(flags.Args()[1:]); err != nil {
		return nil, usageError(err)
	}
	if actionFlags.NArg() != 1 {
		return nil, fmt.Errorf("%w: %s expects exactly one FILE", errUsage, req.action)
	}
	req.input = actionFlags.Arg(0)

	if chapters != "" {
		for _, s := range strings.Split(chapters, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return nil, fmt.Errorf("%w: bad chapter number %q", errUsage, s)
			}
			req.chapters = append(req.chapters, n)
		}
	}
	if navigation != "" {
		mode, ok := navigationModes[navigation]
		if !ok {
			return nil, fmt.Errorf("%w: unknown navigation mode %q", errUsage, navigation)
		}
		req.navigation = mode
	}
	if req.action == "repack" && req.output == "" {
		return nil, fmt.Errorf("%w: repack needs -o", errUsage)
	}
	if req.level < 0 || req.level > 9 {
		return nil, fmt.Errorf("%w: compression level %d out of range", errUsage, req.level)
	}
	return req, nil
}

// usageError keeps flag.ErrHelp intact so help requests exit cleanly.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", errUsage, err)
}

func (r *cliRequest) logger() (*zap.Logger, error) {
	if !r.verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}
