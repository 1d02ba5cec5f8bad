package haml

import "strings"

const defaultXMLEncoding = "utf-8"

// doctypes maps the token after '!!!' to its declaration.
// The empty token is the default doctype.
var doctypes = map[string]string{
	"":         `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">`,
	"strict":   `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">`,
	"frameset": `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Frameset//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-frameset.dtd">`,
	"5":        `<!DOCTYPE html>`,
	"1.1":      `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN" "http://www.w3.org/TR/xhtml11/DTD/xhtml11.dtd">`,
	"basic":    `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML Basic 1.1//EN" "http://www.w3.org/TR/xhtml-basic/xhtml-basic11.dtd">`,
	"mobile":   `<!DOCTYPE html PUBLIC "-//WAPFORUM//DTD XHTML Mobile 1.2//EN" "http://www.openmobilealliance.org/tech/DTD/xhtml-mobile12.dtd">`,
	"rdfa":     `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML+RDFa 1.0//EN" "http://www.w3.org/MarkUp/DTD/xhtml-rdfa-1.dtd">`,
}

// DoctypeDeclaration returns the declaration for the token of a '!!!' line.
// 'XML [encoding]' gives an XML declaration using quote around its values.
// An unknown token gives the HTML5 doctype.
func DoctypeDeclaration(token string, quote byte) string {
	fields := strings.Fields(token)

	if len(fields) > 0 && strings.EqualFold(fields[0], "xml") {
		encoding := defaultXMLEncoding
		if len(fields) > 1 {
			encoding = fields[1]
		}
		q := string(quote)
		return "<?xml version=" + q + "1.0" + q + " encoding=" + q + encoding + q + " ?>"
	}

	if decl, ok := doctypes[strings.ToLower(token)]; ok {
		return decl
	}
	return doctypes["5"]
}
