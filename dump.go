package wikiexport

import (
	"bufio"
	"html"
	"io"
	"regexp"
	"sort"
	"strings"
)

var pageTitleRE, pageIDRE *regexp.Regexp

func init() {
	pageTitleRE = regexp.MustCompile(`<title>([^<]*)</title>`)
	pageIDRE = regexp.MustCompile(`<id>(\d+)</id>`)
}

// A DumpPage is the raw text of one <page>...</page> block of a dump.
type DumpPage struct {
	Title string
	// The page id, empty if the block has none.
	ID   string
	Text string
}

func newDumpPage(text string) *DumpPage {
	p := &DumpPage{Text: text}
	if m := pageTitleRE.FindStringSubmatch(text); m != nil {
		p.Title = html.UnescapeString(m[1])
	}
	// The page's own id comes before any revision or contributor id.
	if m := pageIDRE.FindStringSubmatch(text); m != nil {
		p.ID = m[1]
	}
	return p
}

// A DumpReader splits a dump into its preamble, page blocks and
// trailer without parsing the xml.
//
// Page boundaries are lines containing <page> and </page>, same as
// CopyPage.  Each page block is held in memory, nothing else is.
type DumpReader struct {
	// Everything before the first page: the xml declaration,
	// <mediawiki> and <siteinfo>.
	Preamble string

	br      *bufio.Reader
	pending string
	trailer strings.Builder
	eof     bool
}

func (d *DumpReader) readLine() (string, error) {
	if d.eof {
		return "", io.EOF
	}
	line, err := d.br.ReadString('\n')
	if err == io.EOF {
		d.eof = true
		if line != "" {
			err = nil
		}
	}
	return line, err
}

// NewDumpReader gets a DumpReader reading from r, consuming the
// preamble.
func NewDumpReader(r io.Reader) (*DumpReader, error) {
	d := &DumpReader{br: bufio.NewReader(r)}

	pre := strings.Builder{}
	for {
		line, err := d.readLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.Contains(line, "<page>") {
			d.pending = line
			break
		}
		pre.WriteString(line)
	}
	d.Preamble = pre.String()

	return d, nil
}

// Next gets the next page block.  Returns io.EOF after the last page.
//
// Lines between and after pages (normally just </mediawiki>) are
// collected for Trailer.
func (d *DumpReader) Next() (*DumpPage, error) {
	block := strings.Builder{}
	state := stateSuppressed
	if d.pending != "" {
		block.WriteString(d.pending)
		state = stateCapturing
		if strings.Contains(d.pending, "</page>") {
			state = stateDone
		}
		d.pending = ""
	}

	for state != stateDone {
		line, err := d.readLine()
		if err == io.EOF {
			if state == stateCapturing {
				return nil, ErrPageNotClosed
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}

		if state == stateSuppressed && strings.Contains(line, "<page>") {
			state = stateCapturing
		}
		if state != stateCapturing {
			d.trailer.WriteString(line)
			continue
		}
		block.WriteString(line)
		if strings.Contains(line, "</page>") {
			state = stateDone
		}
	}

	return newDumpPage(block.String()), nil
}

// Trailer is everything read so far that wasn't preamble or page.
func (d *DumpReader) Trailer() string {
	return d.trailer.String()
}

// FilterDump copies the dump in r to w keeping only the pages keep
// approves.  The preamble and trailer are always copied.
func FilterDump(w io.Writer, r io.Reader,
	keep func(*DumpPage) bool) (kept, total int64, err error) {

	d, err := NewDumpReader(r)
	if err != nil {
		return 0, 0, err
	}
	if _, err = io.WriteString(w, d.Preamble); err != nil {
		return 0, 0, err
	}

	for {
		p, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return kept, total, err
		}
		total++
		if !keep(p) {
			continue
		}
		kept++
		if _, err = io.WriteString(w, p.Text); err != nil {
			return kept, total, err
		}
	}

	_, err = io.WriteString(w, d.Trailer())
	return kept, total, err
}

// SplitDump spreads the pages of the dump in r across ws, each page
// going to ws[pick()].  Every writer gets the preamble and trailer, so
// each is a dump in its own right.  Returns the page count per writer.
func SplitDump(ws []io.Writer, r io.Reader, pick func() int) ([]int64, error) {
	counts := make([]int64, len(ws))

	writeAll := func(s string) error {
		for _, w := range ws {
			if _, err := io.WriteString(w, s); err != nil {
				return err
			}
		}
		return nil
	}

	d, err := NewDumpReader(r)
	if err != nil {
		return counts, err
	}
	if err := writeAll(d.Preamble); err != nil {
		return counts, err
	}

	for {
		p, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return counts, err
		}
		n := pick()
		counts[n]++
		if _, err := io.WriteString(ws[n], p.Text); err != nil {
			return counts, err
		}
	}

	return counts, writeAll(d.Trailer())
}

// MergeStats counts what MergeDump did.
type MergeStats struct {
	Updated, Added, Unmodified int64
}

// MergeDump copies the dump in r to w, replacing every page whose id
// is in updates with the updated version.  Updates for ids the dump
// doesn't have are appended in id order, then the dump is closed with
// </mediawiki>.
func MergeDump(w io.Writer, r io.Reader,
	updates map[string]*DumpPage) (MergeStats, error) {

	stats := MergeStats{}

	d, err := NewDumpReader(r)
	if err != nil {
		return stats, err
	}
	if _, err := io.WriteString(w, d.Preamble); err != nil {
		return stats, err
	}

	replaced := map[string]bool{}
	for {
		p, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, err
		}
		if u, ok := updates[p.ID]; ok && p.ID != "" {
			replaced[p.ID] = true
			p = u
			stats.Updated++
		} else {
			stats.Unmodified++
		}
		if _, err := io.WriteString(w, p.Text); err != nil {
			return stats, err
		}
	}

	ids := make([]string, 0, len(updates))
	for id := range updates {
		if !replaced[id] {
			ids = append(ids, id)
		}
	}
	// Numeric order.
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) < len(ids[j])
		}
		return ids[i] < ids[j]
	})
	for _, id := range ids {
		if _, err := io.WriteString(w, updates[id].Text); err != nil {
			return stats, err
		}
		stats.Added++
	}

	_, err = io.WriteString(w, dumpTrailer+"\n")
	return stats, err
}

// ReadDumpPage gets the first page of a dump or export.
func ReadDumpPage(r io.Reader) (*DumpPage, error) {
	d, err := NewDumpReader(r)
	if err != nil {
		return nil, err
	}
	p, err := d.Next()
	if err == io.EOF {
		return nil, ErrNoPage
	}
	return p, err
}
