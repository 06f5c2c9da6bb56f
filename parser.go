package wikiexport

import (
	"encoding/xml"
	"io"
)

// The toplevel site info describing basic dump properties.
type SiteInfo struct {
	SiteName   string `xml:"sitename"`
	Base       string `xml:"base"`
	Generator  string `xml:"generator"`
	Case       string `xml:"case"`
	Namespaces []struct {
		Key   string `xml:"key,attr"`
		Case  string `xml:"case,attr"`
		Value string `xml:",chardata"`
	} `xml:"namespaces>namespace"`
}

// A user who contributed a revision.
type Contributor struct {
	ID       uint64 `xml:"id"`
	Username string `xml:"username"`
}

// A revision to a page.
type Revision struct {
	ID          uint64      `xml:"id"`
	Timestamp   string      `xml:"timestamp"`
	Contributor Contributor `xml:"contributor"`
	Comment     string      `xml:"comment"`
	Model       string      `xml:"model"`
	Format      string      `xml:"format"`
	Text        string      `xml:"text"`
}

// A wiki page.
type Page struct {
	Title     string     `xml:"title"`
	NS        int        `xml:"ns"`
	ID        uint64     `xml:"id"`
	Revisions []Revision `xml:"revision"`
}

// A Parser emits wiki pages from a dump, such as one written by a
// Sampler.
type Parser interface {
	// Get the next page from the parser.  Returns io.EOF after the
	// last page.
	Next() (*Page, error)
	// The toplevel site info.
	SiteInfo() SiteInfo
}

type singleStreamParser struct {
	siteInfo SiteInfo
	x        *xml.Decoder
}

// NewParser gets a dump parser reading from the given reader.
func NewParser(r io.Reader) (Parser, error) {
	d := xml.NewDecoder(r)
	// Skip past the xml declaration to the opening <mediawiki>.
	for {
		t, err := d.Token()
		if err != nil {
			return nil, err
		}
		if _, ok := t.(xml.StartElement); ok {
			break
		}
	}

	si := SiteInfo{}
	err := d.Decode(&si)
	if err != nil {
		return nil, err
	}

	return &singleStreamParser{
		siteInfo: si,
		x:        d,
	}, nil
}

func (p *singleStreamParser) Next() (rv *Page, err error) {
	rv = new(Page)
	err = p.x.Decode(rv)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func (p *singleStreamParser) SiteInfo() SiteInfo {
	return p.siteInfo
}
