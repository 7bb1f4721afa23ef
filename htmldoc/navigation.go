package htmldoc

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// furniturePattern matches class and id values of page furniture that
// converters commonly leave in content documents.
var furniturePattern = regexp.MustCompile(
	`(?i)(^|[^a-z])(nav|navbar|navigation|menu|breadcrumbs?|` +
		`running-?head|runninghead|page-?header|page-?footer|page-?number|pagenum|` +
		`footer|sidebar|widget|calibre_pb)([^a-z]|$)`)

// structuralTypes are epub:type values that mark navigation rather than
// reading content.
var structuralTypes = map[string]bool{
	"toc":       true,
	"landmarks": true,
	"page-list": true,
	"pagebreak": true,
	"loi":       true,
	"lot":       true,
}

// exclusionChecker decides which elements are skipped during extraction.
type exclusionChecker struct {
	mode             NavigationExclusionMode
	bodyNode         *html.Node
	topLevelWrapper  *html.Node
	linkDensityCache map[*html.Node]float64
}

// newExclusionChecker creates a checker for the given mode and document.
func newExclusionChecker(mode NavigationExclusionMode, doc *html.Node) *exclusionChecker {
	checker := &exclusionChecker{
		mode:             mode,
		linkDensityCache: make(map[*html.Node]float64),
	}
	checker.bodyNode = findElement(doc, "body")
	if checker.bodyNode == nil {
		checker.bodyNode = doc
	}
	checker.topLevelWrapper = detectTopLevelWrapper(checker.bodyNode)
	return checker
}

// detectTopLevelWrapper finds a single structural wrapper such as
// <body><div class="chapter">...</div></body>.
func detectTopLevelWrapper(body *html.Node) *html.Node {
	var wrapper *html.Node
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "div", "main", "section", "article":
			if wrapper != nil {
				return nil
			}
			wrapper = c
		case "script", "style", "noscript", "template":
		default:
			return nil
		}
	}
	return wrapper
}

// shouldExclude reports whether n and its subtree are skipped.
func (ec *exclusionChecker) shouldExclude(n *html.Node) bool {
	if n.Type != html.ElementNode || ec.mode == NavigationExclusionNone {
		return false
	}
	if ec.shouldExcludeExplicit(n) {
		return true
	}
	if ec.mode >= NavigationExclusionStandard && ec.shouldExcludeByPattern(n) {
		return true
	}
	if ec.mode >= NavigationExclusionAggressive && ec.shouldExcludeByLinkDensity(n) {
		return true
	}
	return false
}

func (ec *exclusionChecker) shouldExcludeExplicit(n *html.Node) bool {
	switch n.Data {
	case "nav", "aside":
		return true
	case "header", "footer":
		return ec.isTopLevel(n)
	}

	switch getAttr(n, "role") {
	case "navigation", "complementary", "doc-toc", "doc-pagebreak", "doc-pagelist":
		return true
	case "banner", "contentinfo":
		return ec.isTopLevel(n)
	}

	for _, t := range strings.Fields(epubType(n)) {
		if structuralTypes[t] {
			return true
		}
	}
	return false
}

// isTopLevel reports whether n is a direct child of body or of the single
// top-level wrapper.
func (ec *exclusionChecker) isTopLevel(n *html.Node) bool {
	parent := n.Parent
	if parent == nil {
		return false
	}
	return parent == ec.bodyNode || (ec.topLevelWrapper != nil && parent == ec.topLevelWrapper)
}

func (ec *exclusionChecker) shouldExcludeByPattern(n *html.Node) bool {
	if class := getAttr(n, "class"); class != "" && furniturePattern.MatchString(class) {
		return true
	}
	if id := getAttr(n, "id"); id != "" && furniturePattern.MatchString(id) {
		return true
	}
	return false
}

// shouldExcludeByLinkDensity flags block containers where more than 60% of
// the text sits inside at least four links.
func (ec *exclusionChecker) shouldExcludeByLinkDensity(n *html.Node) bool {
	switch n.Data {
	case "div", "section", "ul", "ol", "p":
	default:
		return false
	}
	return ec.linkDensity(n) > 0.6 && countLinks(n) >= 4
}

func (ec *exclusionChecker) linkDensity(n *html.Node) float64 {
	if cached, ok := ec.linkDensityCache[n]; ok {
		return cached
	}
	density := 0.0
	if total := textLength(n); total > 0 {
		density = float64(linkTextLength(n)) / float64(total)
	}
	ec.linkDensityCache[n] = density
	return density
}

func textLength(n *html.Node) int {
	if n.Type == html.TextNode {
		return len(strings.TrimSpace(n.Data))
	}
	total := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		total += textLength(c)
	}
	return total
}

func linkTextLength(n *html.Node) int {
	if n.Type == html.ElementNode && n.Data == "a" {
		return textLength(n)
	}
	total := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		total += linkTextLength(c)
	}
	return total
}

func countLinks(n *html.Node) int {
	count := 0
	if n.Type == html.ElementNode && n.Data == "a" {
		count = 1
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count += countLinks(c)
	}
	return count
}

// getAttr returns the value of attribute key, or "".
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// epubType returns the epub:type attribute. The HTML parser keeps the
// prefix as part of the key.
func epubType(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key == "epub:type" || (attr.Key == "type" && attr.Namespace == "epub") {
			return attr.Val
		}
	}
	return ""
}

// findElement returns the first element called tag in document order.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
