// Package mediatype maps file names and registered type names to the
// canonical media types understood by EPUB containers.
//
// Every known type is a package-level *MediaType value, so media types can be
// compared with ==:
//
//	mt := mediatype.ByExtension("chapter1.xhtml")
//	if mt == mediatype.XHTML {
//	    // textual content document
//	}
//
// Lookups return nil for unknown names or extensions. [Sniff] inspects the
// payload itself and is useful for resources whose file name carries no
// recognisable extension.
package mediatype
