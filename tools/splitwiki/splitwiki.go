// Split a wikipedia dump into a number of gzipped dumps, each page
// going to one of them at random.
package main

import (
	"compress/gzip"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-wikiexport"
)

var seed = flag.Int64("seed", 0, "Random seed (0 picks one from the clock)")

func init() {
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr,
		"Usage:\n  %s [opts] num_split prefix < dump.xml\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nWrites prefix.0000.gz, prefix.0001.gz, ...\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	flag.Parse()
	if flag.NArg() != 2 {
		usage()
	}
	n, err := strconv.Atoi(flag.Arg(0))
	if err != nil || n < 1 {
		usage()
	}
	prefix := flag.Arg(1)
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(*seed))

	files := make([]*os.File, n)
	zs := make([]*gzip.Writer, n)
	ws := make([]io.Writer, n)
	for i := range files {
		fn := fmt.Sprintf("%s.%04d.gz", prefix, i)
		files[i], err = os.Create(fn)
		if err != nil {
			log.Fatalf("Error creating %v: %v", fn, err)
		}
		zs[i] = gzip.NewWriter(files[i])
		ws[i] = zs[i]
	}

	counts, err := wikiexport.SplitDump(ws, os.Stdin, func() int {
		return rnd.Intn(n)
	})
	if err != nil {
		log.Fatalf("Error splitting dump: %v", err)
	}

	for i := range files {
		if err := zs[i].Close(); err != nil {
			log.Fatalf("Error finishing %v: %v", files[i].Name(), err)
		}
		if err := files[i].Close(); err != nil {
			log.Fatalf("Error closing %v: %v", files[i].Name(), err)
		}
		log.Info("Wrote split", "file", files[i].Name(),
			"pages", humanize.Comma(counts[i]))
	}
}
