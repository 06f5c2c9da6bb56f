package wikiexport

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// ErrNoPage is returned when an export contains no <page> element.
// This is what the site sends back for titles that don't exist.
var ErrNoPage = errors.New("No page found in export.")

// ErrPageNotClosed is returned when an export ends inside a page.
var ErrPageNotClosed = errors.New("Export ended before </page>.")

type copyState int

const (
	stateSuppressed copyState = iota
	stateCapturing
	stateDone
)

// CopyPage copies the first page of an export from r to w.
//
// Lines are copied verbatim.  With includePreamble, everything before
// the <page> line (the xml declaration, <mediawiki> and <siteinfo>)
// is copied too.  Nothing after the </page> line is ever copied, so
// the export's own </mediawiki> is dropped.
func CopyPage(w io.Writer, r io.Reader, includePreamble bool) (int64, error) {
	state := stateSuppressed
	if includePreamble {
		state = stateCapturing
	}

	br := bufio.NewReader(r)
	written := int64(0)
	sawPage := false
	for state != stateDone {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return written, err
		}
		if line == "" && err == io.EOF {
			break
		}

		if strings.Contains(line, "<page>") {
			sawPage = true
			state = stateCapturing
		}

		if state == stateCapturing {
			n, werr := io.WriteString(w, line)
			written += int64(n)
			if werr != nil {
				return written, werr
			}
			if strings.Contains(line, "</page>") {
				state = stateDone
			}
		}

		if err == io.EOF {
			break
		}
	}

	switch {
	case !sawPage:
		return written, ErrNoPage
	case state != stateDone:
		return written, ErrPageNotClosed
	}
	return written, nil
}
