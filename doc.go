// Package wikiexport builds small wikipedia xml dumps from the live
// site.
//
// A sample dump holds a single article along with every template the
// article's edit page says it uses, fetched through Special:Export:
//    https://en.wikipedia.org/wiki/Special:Export/Microsoft
//
// The result is a well-formed dump suitable as a test fixture for
// anything that processes the full dumps from:
//    http://dumps.wikimedia.org/
//
// See tools/getpage for the command line version.  tools/samplewiki,
// tools/splitwiki and tools/riffle cut down, split and update whole
// dumps using DumpReader.
package wikiexport
