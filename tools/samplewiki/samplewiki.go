// Take a random sample of the pages of a wikipedia dump, keeping every
// template.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-wikiexport"
)

var part = flag.Int("part", 100,
	"Keep about one in this many non-template pages")
var seed = flag.Int64("seed", 0, "Random seed (0 picks one from the clock)")

func init() {
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr,
		"Usage:\n  %s [opts] < dump.xml > sample.xml\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	flag.Parse()
	if flag.NArg() != 0 || *part < 1 {
		usage()
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(*seed))

	out := bufio.NewWriter(os.Stdout)
	kept, total, err := wikiexport.FilterDump(out, os.Stdin,
		func(p *wikiexport.DumpPage) bool {
			return strings.HasPrefix(p.Title, "Template:") || rnd.Intn(*part) == 0
		})
	if err != nil {
		log.Fatalf("Error sampling dump: %v", err)
	}
	if err := out.Flush(); err != nil {
		log.Fatalf("Error writing sample: %v", err)
	}
	log.Info("Sampled dump", "kept", humanize.Comma(kept),
		"pages", humanize.Comma(total), "seed", *seed)
}
