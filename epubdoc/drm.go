package epubdoc

import (
	"errors"
	"strings"

	"github.com/tsawler/epubkit/internal/xmlutil"
	"github.com/tsawler/epubkit/model"
)

// DRM-related errors.
var (
	ErrDRMProtected = errors.New("epub: DRM-protected content cannot be processed")
)

const (
	rightsPath     = "META-INF/rights.xml"
	encryptionPath = "META-INF/encryption.xml"

	nsXMLEnc = "http://www.w3.org/2001/04/xmlenc#"
)

// Font mangling algorithms registered by the IDPF and Adobe.
var fontObfuscationAlgorithms = map[string]bool{
	"http://www.idpf.org/2008/embedding": true,
	"http://ns.adobe.com/pdf/enc#RC":     true,
}

// checkForDRM returns ErrDRMProtected if the archive carries Adobe rights
// or encrypts content documents. Font obfuscation is not DRM.
func checkForDRM(raw *model.Resources) error {
	if raw.ContainsHref(rightsPath) {
		return ErrDRMProtected
	}
	enc := raw.ByHref(encryptionPath)
	if enc == nil {
		return nil
	}
	encrypted, err := hasEncryptedContent(enc.Data)
	if err != nil || encrypted {
		return ErrDRMProtected
	}
	return nil
}

// hasEncryptedContent reports whether encryption.xml lists an encrypted
// content document.
func hasEncryptedContent(data []byte) (bool, error) {
	doc, err := xmlutil.Parse(data)
	if err != nil {
		return false, err
	}
	for _, ed := range xmlutil.Elements(doc.Root(), nsXMLEnc, "EncryptedData") {
		var algorithm string
		if m := xmlutil.FirstElement(ed, nsXMLEnc, "EncryptionMethod"); m != nil {
			algorithm = xmlutil.Attr(m, nsXMLEnc, "Algorithm")
		}
		if isFontObfuscation(algorithm) {
			continue
		}
		if ref := xmlutil.FirstElement(ed, nsXMLEnc, "CipherReference"); ref != nil {
			if isContentFile(xmlutil.Attr(ref, nsXMLEnc, "URI")) {
				return true, nil
			}
		}
	}
	return false, nil
}

// isFontObfuscation reports whether algorithm is the IDPF or Adobe font
// mangling scheme.
func isFontObfuscation(algorithm string) bool {
	if fontObfuscationAlgorithms[strings.TrimSpace(algorithm)] {
		return true
	}
	a := strings.ToLower(algorithm)
	if !strings.Contains(a, "obfuscation") {
		return false
	}
	return strings.Contains(a, "adobe.com") || strings.Contains(a, "idpf.org")
}

// isContentFile reports whether uri names a document or stylesheet.
func isContentFile(uri string) bool {
	uri = strings.ToLower(uri)
	for _, ext := range []string{".xhtml", ".html", ".htm", ".xml", ".css"} {
		if strings.HasSuffix(uri, ext) {
			return true
		}
	}
	return false
}
