// Package search ranks titles from the local stores and the built-in
// commands against an omni-search query.
package search

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

type Kind string

const (
	KindTask    Kind = "TASK"
	KindNote    Kind = "NOTE"
	KindProject Kind = "PROJECT"
	KindEvent   Kind = "EVENT"
	KindCommand Kind = "COMMAND"
)

// MaxResults is how many results a query returns.
const MaxResults = 5

const (
	scoreExact     = 100
	scoreSubstring = 50
	scoreFuzzy     = 20
	archivePenalty = 30
)

type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Kind        Kind   `json:"type"`
	Description string `json:"description,omitempty"`
	Action      string `json:"action,omitempty"`
	Archived    bool   `json:"archived,omitempty"`
}

type Result struct {
	Item
	Score int `json:"score"`
}

// Commands are always searchable.
var Commands = []Item{
	{ID: "CMD_THEME_PINK", Title: "> theme pink", Kind: KindCommand, Action: "SET_THEME_PINK", Description: "SWITCH_TO_MAGENTA_ACCENT"},
	{ID: "CMD_THEME_CYAN", Title: "> theme cyan", Kind: KindCommand, Action: "SET_THEME_CYAN", Description: "SWITCH_TO_CYAN_ACCENT"},
	{ID: "CMD_LOGOUT", Title: "> logout", Kind: KindCommand, Action: "SYSTEM_SHUTDOWN", Description: "TERMINATE_SESSION"},
	{ID: "CMD_SYNC", Title: "> sync", Kind: KindCommand, Action: "FORCE_HANDSHAKE", Description: "MANUAL_DB_SYNCHRONIZATION"},
	{ID: "CMD_BACKUP", Title: "> backup", Kind: KindCommand, Action: "INIT_JSON_EXPORT", Description: "CLOUD_DATA_BACKUP"},
}

var scopePrefixes = map[string]Kind{
	"/t": KindTask,
	"/n": KindNote,
	"/p": KindProject,
}

// parse lowercases the query and strips a scope prefix. A nil scope means
// every kind.
func parse(raw string) (query string, scope map[Kind]bool, commands bool) {
	query = strings.ToLower(strings.TrimSpace(raw))

	switch {
	case strings.HasPrefix(query, "/"):
		prefix, rest, _ := strings.Cut(query, " ")
		query = rest
		if kind, ok := scopePrefixes[prefix]; ok {
			scope = map[Kind]bool{kind: true}
		}
	case strings.HasPrefix(query, ">"):
		scope = map[Kind]bool{KindCommand: true}
		commands = true
	}
	return query, scope, commands
}

// Score rates a lowercased title against a lowercased query.
func Score(query, title string, archived bool) int {
	var score int
	switch {
	case title == query:
		score += scoreExact
	case strings.Contains(title, query):
		score += scoreSubstring
	case len([]rune(query)) > 2 && levenshtein.ComputeDistance(query, prefixRunes(title, len([]rune(query)))) < 2:
		score += scoreFuzzy
	}
	if archived {
		score -= archivePenalty
	}
	return score
}

func prefixRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

// Run ranks items against raw and returns at most MaxResults, best first.
// Commands are always candidates. An empty query returns nothing.
func Run(raw string, items []Item) []Result {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	query, scope, commands := parse(raw)

	candidates := make([]Item, 0, len(items)+len(Commands))
	candidates = append(candidates, items...)
	candidates = append(candidates, Commands...)

	var results []Result
	for _, item := range candidates {
		if scope != nil && !scope[item.Kind] {
			continue
		}
		score := Score(query, strings.ToLower(item.Title), item.Archived)
		if score > -archivePenalty || (commands && item.Kind == KindCommand) {
			results = append(results, Result{Item: item, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	return results
}
