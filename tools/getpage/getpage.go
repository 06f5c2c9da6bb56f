// Construct a partial wikipedia dump containing one page and all the
// templates it includes.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-wikiexport"
)

func usage() {
	fmt.Fprintf(os.Stdout, `Constructs a partial Wikipedia dump containing one page
and all templates it includes

Usage:
  %s unique_name

For example "%s Microsoft" creates a dump in microsoft.xml
that can be used to test if a dump processor properly handles
Microsoft's page
`, os.Args[0], os.Args[0])
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	title := os.Args[1]

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})

	c := wikiexport.NewClient(wikiexport.DefaultBaseURL,
		wikiexport.Profile{UserAgent: wikiexport.DefaultUserAgent})
	s := wikiexport.NewSampler(c)
	s.Logger = logger

	if _, err := s.Run(context.Background(), title); err != nil {
		logger.Fatalf("Error building dump of %q: %v", title, err)
	}
}
