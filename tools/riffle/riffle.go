// Update a wikipedia dump from a directory of exported pages.
//
// Pages in the dump with the same id as an exported page are replaced,
// exported pages the dump doesn't have are added at the end.  The
// exports can be Special:Export output or dumps made by getpage; only
// the first page of each is used.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-wikiexport"
)

var input = flag.String("i", "", "The dump to update.")
var output = flag.String("o", "", "Where to write the updated dump.")
var pages = flag.String("t", "", "Directory of exported pages.")

func init() {
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr,
		"Usage:\n  %s -i input.xml -o output.xml -t path_to_pages\n",
		os.Args[0])
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

func loadPages(dir string) map[string]*wikiexport.DumpPage {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("Error reading %v: %v", dir, err)
	}

	rv := map[string]*wikiexport.DumpPage{}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		fn := filepath.Join(dir, e.Name())
		f, err := os.Open(fn)
		if err != nil {
			log.Warn("Can't open export, ignoring", "file", fn, "err", err)
			continue
		}
		p, err := wikiexport.ReadDumpPage(f)
		f.Close()
		if err != nil || p.ID == "" {
			log.Warn("No usable page in export, ignoring", "file", fn, "err", err)
			continue
		}
		rv[p.ID] = p
	}
	log.Info("Loaded updated pages", "count", humanize.Comma(int64(len(rv))))
	return rv
}

func main() {
	flag.Parse()
	if *input == "" || *output == "" || *pages == "" {
		usage()
	}

	updates := loadPages(*pages)

	in, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Error opening %v: %v", *input, err)
	}
	defer in.Close()

	out, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Error creating %v: %v", *output, err)
	}
	bw := bufio.NewWriter(out)

	stats, err := wikiexport.MergeDump(bw, in, updates)
	if err != nil {
		log.Fatalf("Error updating dump: %v", err)
	}
	if err := bw.Flush(); err != nil {
		log.Fatalf("Error writing %v: %v", *output, err)
	}
	if err := out.Close(); err != nil {
		log.Fatalf("Error closing %v: %v", *output, err)
	}

	log.Info("Updated dump",
		"updated", humanize.Comma(stats.Updated),
		"added", humanize.Comma(stats.Added),
		"unmodified", humanize.Comma(stats.Unmodified))
}
