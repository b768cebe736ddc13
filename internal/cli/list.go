package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rolodex/pkg/query"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// suggestDistance is the edit distance allowed for "did you mean" hints.
const suggestDistance = 2

type listOptions struct {
	search         string
	company        bool
	sort           bool
	favoritesFirst bool
	favoritesOnly  bool
	group          bool
}

func newListCmd(a *app) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		Long: `List prints contacts in the order they were added.

Example:
  rolodex list --search ada
  rolodex list --sort --favorites-first
  rolodex list --group`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(s *session) error {
				return runList(cmd, a.flags.jsonMode, s.store.List(), opts)
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.search, "search", "s", "", "only contacts whose name contains this text")
	fs.BoolVar(&opts.company, "company", false, "let --search match company names too")
	fs.BoolVar(&opts.sort, "sort", false, "sort by last name, then first name")
	fs.BoolVar(&opts.favoritesFirst, "favorites-first", false, "show favorites before everyone else")
	fs.BoolVar(&opts.favoritesOnly, "favorites", false, "only favorites")
	fs.BoolVar(&opts.group, "group", false, "group alphabetically under letter headings")
	return cmd
}

func runList(cmd *cobra.Command, jsonMode bool, all []types.Contact, opts listOptions) error {
	out := cmd.OutOrStdout()

	contacts := all
	if opts.favoritesOnly {
		favs := contacts[:0:0]
		for _, c := range contacts {
			if c.Favorite {
				favs = append(favs, c)
			}
		}
		contacts = favs
	}
	if opts.search != "" {
		var searchOpts []query.SearchOption
		if opts.company {
			searchOpts = append(searchOpts, query.IncludeCompany())
		}
		contacts = query.Search(contacts, opts.search, searchOpts...)
	}
	if opts.group {
		sections := query.GroupAlphabetically(contacts)
		if jsonMode {
			return printJSON(out, sections)
		}
		if len(sections) == 0 {
			return noMatches(cmd, all, opts.search)
		}
		printSections(out, sections)
		return nil
	}
	if opts.sort {
		contacts = query.SortAlphabetically(contacts)
	}
	if opts.favoritesFirst {
		contacts = query.FavoritesFirst(contacts)
	}

	if jsonMode {
		return printJSON(out, contacts)
	}
	if len(contacts) == 0 {
		return noMatches(cmd, all, opts.search)
	}
	printContactTable(out, contacts)
	return nil
}

// noMatches reports an empty result, suggesting close names when a search
// found nothing.
func noMatches(cmd *cobra.Command, all []types.Contact, term string) error {
	out := cmd.OutOrStdout()
	if term == "" {
		fmt.Fprintln(out, "No contacts found.")
		return nil
	}
	fmt.Fprintf(out, "No contacts match %q.\n", term)
	suggestions := query.Suggest(all, term, suggestDistance)
	if len(suggestions) == 0 {
		return nil
	}
	names := make([]string, len(suggestions))
	for i, c := range suggestions {
		names[i] = c.FullName()
	}
	fmt.Fprintf(out, "Did you mean: %s?\n", strings.Join(names, ", "))
	return nil
}
