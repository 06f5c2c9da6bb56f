package wikiexport

import (
	"html"
	"regexp"
	"sort"
)

var templateRE *regexp.Regexp

func init() {
	templateRE = regexp.MustCompile(`title="(Template:[^"]+)">Template:`)
}

// FindTemplates finds all the distinct templates linked from the
// given edit page.
//
// The edit form lists the templates used on the page as links whose
// title attribute and text both start with "Template:".  The result
// is sorted and never nil.
func FindTemplates(text string) []string {
	matches := templateRE.FindAllStringSubmatch(text, -1)

	seen := map[string]bool{}
	rv := make([]string, 0, len(matches))
	for _, x := range matches {
		name := html.UnescapeString(x[1])
		if !seen[name] {
			seen[name] = true
			rv = append(rv, name)
		}
	}
	sort.Strings(rv)

	return rv
}
