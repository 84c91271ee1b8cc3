package validation

const MaxTags = 2

// Tags is the closed tag vocabulary in display order.
var Tags = []string{
	"Standard",
	"Puzzle",
	"Speedrun",
	"Autoscroll",
	"Auto",
	"Short & Sweet",
	"Multiplayer",
	"Themed",
	"Music",
	"Art",
	"Technical",
	"Shooter",
	"Boss Battle",
	"Single Player",
	"Kaizo",
}

var tagIndex = func() map[string]int {
	index := make(map[string]int, len(Tags))
	for i, tag := range Tags {
		index[tag] = i
	}
	return index
}()

// IsKnownTag reports whether tag belongs to the vocabulary.
func IsKnownTag(tag string) bool {
	_, ok := tagIndex[tag]
	return ok
}

// SelectTags keeps vocabulary members only, collapses duplicates and caps
// the result at MaxTags. The result follows vocabulary order. Unknown
// values are dropped silently.
func SelectTags(requested []string) []string {
	seen := make(map[string]bool, len(requested))
	for _, tag := range requested {
		if IsKnownTag(tag) {
			seen[tag] = true
		}
	}

	selected := make([]string, 0, MaxTags)
	for _, tag := range Tags {
		if len(selected) == MaxTags {
			break
		}
		if seen[tag] {
			selected = append(selected, tag)
		}
	}
	return selected
}
