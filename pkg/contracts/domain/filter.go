package domain

// FilterSelection is the user's restriction on festival and sentiment values.
// An empty subset means "no restriction": every value passes.
type FilterSelection struct {
	Festivals  []string `json:"festivals,omitempty"`
	Sentiments []string `json:"sentiments,omitempty"`
}

// IsZero reports whether the selection restricts nothing.
func (f FilterSelection) IsZero() bool {
	return len(f.Festivals) == 0 && len(f.Sentiments) == 0
}

// Matches reports whether a post passes the selection. A post passes iff its
// festival is in the festival subset (or the subset is empty) and its
// sentiment is in the sentiment subset (or that subset is empty).
func (f FilterSelection) Matches(p Post) bool {
	return contains(f.Festivals, p.Festival) && contains(f.Sentiments, p.Sentiment)
}

func contains(subset []string, value string) bool {
	if len(subset) == 0 {
		return true
	}
	for _, v := range subset {
		if v == value {
			return true
		}
	}
	return false
}
