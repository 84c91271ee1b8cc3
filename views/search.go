package views

import (
	"sort"
	"strings"

	"maker-profiles/models"
)

// MaxTagSummary caps the filter shortcuts shown above the list.
const MaxTagSummary = 24

type TagCount struct {
	Tag   string
	Count int
}

// Matches reports whether profile passes the text query and the exact tag
// filter. Either may be empty. The query is a case-insensitive substring
// match over name, handle, bio and tags.
func Matches(profile models.Profile, query, tag string) bool {
	if tag != "" && !hasTag(profile, tag) {
		return false
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	haystack := strings.ToLower(strings.Join([]string{
		profile.Name,
		profile.Handle,
		profile.Bio,
		strings.Join(profile.Tags, " "),
	}, " "))
	return strings.Contains(haystack, query)
}

// FilterProfiles keeps the profiles that match, preserving input order.
func FilterProfiles(profiles []models.Profile, query, tag string) []models.Profile {
	filtered := make([]models.Profile, 0, len(profiles))
	for _, profile := range profiles {
		if Matches(profile, query, tag) {
			filtered = append(filtered, profile)
		}
	}
	return filtered
}

// SortNewestFirst orders by UpdatedAt descending, then handle.
func SortNewestFirst(profiles []models.Profile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		if !profiles[i].UpdatedAt.Equal(profiles[j].UpdatedAt) {
			return profiles[i].UpdatedAt.After(profiles[j].UpdatedAt)
		}
		return profiles[i].Handle < profiles[j].Handle
	})
}

// TagSummary counts tag usage across profiles, most used first, capped at
// MaxTagSummary. Ties are broken alphabetically.
func TagSummary(profiles []models.Profile) []TagCount {
	counts := make(map[string]int)
	for _, profile := range profiles {
		for _, tag := range profile.Tags {
			counts[tag]++
		}
	}

	summary := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		summary = append(summary, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(summary, func(i, j int) bool {
		if summary[i].Count != summary[j].Count {
			return summary[i].Count > summary[j].Count
		}
		return summary[i].Tag < summary[j].Tag
	})
	if len(summary) > MaxTagSummary {
		summary = summary[:MaxTagSummary]
	}
	return summary
}

func hasTag(profile models.Profile, tag string) bool {
	for _, t := range profile.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
