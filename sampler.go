package wikiexport

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// DefaultDelay is how long to wait between exports to be nice to
// wikimedia's servers.
const DefaultDelay = 2 * time.Second

// The closing tag of the dump.  Each export carries its own, but only
// the page blocks are kept.
const dumpTrailer = "</mediawiki>"

// A Sampler builds a dump from a page and the templates it uses.
type Sampler struct {
	Client *Client
	// Pause before each template export.
	Delay time.Duration
	// Directory the dump is written to.  Empty means the current
	// directory.
	Dir    string
	Logger *log.Logger

	sleep func(context.Context, time.Duration) error
}

// NewSampler gets a Sampler fetching through the given client with the
// default delay.
func NewSampler(c *Client) *Sampler {
	return &Sampler{
		Client: c,
		Delay:  DefaultDelay,
		Logger: log.Default(),
		sleep:  sleep,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OutputName is the file name a dump of the given page is written to.
func OutputName(title string) string {
	return strings.ToLower(title) + ".xml"
}

func (s *Sampler) pause(ctx context.Context) error {
	if s.sleep == nil {
		return sleep(ctx, s.Delay)
	}
	return s.sleep(ctx, s.Delay)
}

func (s *Sampler) logger() *log.Logger {
	if s.Logger == nil {
		return log.Default()
	}
	return s.Logger
}

func (s *Sampler) fetch(ctx context.Context, w io.Writer, title string,
	includePreamble bool) error {

	s.logger().Info("Downloading", "title", title)

	body, err := s.Client.Export(ctx, title)
	if err != nil {
		return err
	}
	defer body.Close()

	n, err := CopyPage(w, body, includePreamble)
	if err != nil {
		return errors.Wrapf(err, "Error copying export of %q", title)
	}
	s.logger().Debug("Wrote page", "title", title, "size", humanize.Bytes(uint64(n)))
	return nil
}

// Sample writes a dump of the given page and the templates it uses to
// w.
//
// The template list is resolved before anything is written.
func (s *Sampler) Sample(ctx context.Context, w io.Writer, title string) error {
	deps, err := s.Client.Dependencies(ctx, title)
	if err != nil {
		return err
	}
	return s.write(ctx, w, title, deps)
}

func (s *Sampler) write(ctx context.Context, w io.Writer, title string,
	deps []string) error {

	if err := s.fetch(ctx, w, title, true); err != nil {
		return err
	}

	for _, dep := range deps {
		if err := s.pause(ctx); err != nil {
			return err
		}
		err := s.fetch(ctx, w, dep, false)
		switch {
		case err == nil:
		case errors.Cause(err) == ErrNoPage:
			s.logger().Warn("Skipping template with no page", "title", dep)
		default:
			return err
		}
	}

	_, err := io.WriteString(w, dumpTrailer)
	return err
}

// Run writes a dump of the given page and its templates to
// OutputName(title) in s.Dir, replacing any existing file, and returns
// the path written.
//
// Nothing is created if the template list can't be fetched.  Any
// later failure leaves a truncated file behind.
func (s *Sampler) Run(ctx context.Context, title string) (string, error) {
	deps, err := s.Client.Dependencies(ctx, title)
	if err != nil {
		return "", err
	}

	fn := filepath.Join(s.Dir, OutputName(title))
	f, err := os.Create(fn)
	if err != nil {
		return fn, errors.Wrapf(err, "Error creating %v", fn)
	}

	err = s.write(ctx, f, title, deps)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return fn, err
}
