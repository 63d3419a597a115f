package domain

import "strings"

// PathSeparator joins breadcrumb titles when a path is rendered.
const PathSeparator = " / "

// PageLookup maps page titles to their index records.
type PageLookup map[string]*Page

// BuildLookup builds a title lookup from the wiki index listing.
// Duplicate titles silently overwrite, last wins. The wiki does not
// enforce title uniqueness, so this is a documented limitation rather
// than an error.
func BuildLookup(pages []Page) PageLookup {
	lookup := make(PageLookup, len(pages))
	for i := range pages {
		lookup[pages[i].Title] = &pages[i]
	}
	return lookup
}

// Breadcrumb returns the titles from the hierarchy root down to title.
// Walking stops silently when a referenced parent is missing from the
// lookup, yielding a truncated breadcrumb. A cyclic parent reference,
// which the source format nominally forbids, is treated the same way:
// the walk terminates at the first repeated title.
func Breadcrumb(title string, lookup PageLookup) []string {
	var crumbs []string
	visited := make(map[string]struct{})

	for title != "" {
		page, ok := lookup[title]
		if !ok {
			break
		}
		if _, seen := visited[title]; seen {
			break
		}
		visited[title] = struct{}{}
		crumbs = append([]string{title}, crumbs...)

		if page.ParentTitle == nil {
			break
		}
		title = *page.ParentTitle
	}

	return crumbs
}

// JoinPath renders a breadcrumb as a single path string, e.g. "A / B / C".
func JoinPath(crumbs []string) string {
	return strings.Join(crumbs, PathSeparator)
}
