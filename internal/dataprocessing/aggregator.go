package dataprocessing

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"festivalpulse/pkg/contracts/domain"
)

// DefaultTopN bounds the emoji-ranking charts when the caller supplies no
// cutoff. MaxTopN caps the slider on the control surface.
const (
	DefaultTopN = 10
	MaxTopN     = 50
)

// ClampTopN normalises a caller-supplied top-N cutoff into [1, MaxTopN],
// substituting the default for zero or negative values.
func ClampTopN(n int) int {
	if n <= 0 {
		return DefaultTopN
	}
	if n > MaxTopN {
		return MaxTopN
	}
	return n
}

// EmojiFrequency counts posts per distinct emoji value, sorted descending by
// count with first-seen order breaking ties, truncated to topN entries.
func EmojiFrequency(ds *domain.Dataset, topN int) []CountItem {
	topN = ClampTopN(topN)
	items := countBy(ds, func(p domain.Post) string { return p.Emoji })
	if len(items) > topN {
		items = items[:topN]
	}
	return items
}

// SentimentDistribution counts posts per sentiment value. The per-label
// counts always sum to the dataset's row count.
func SentimentDistribution(ds *domain.Dataset) []CountItem {
	items := countBy(ds, func(p domain.Post) string { return p.Sentiment })
	// Distribution charts read better in label order than rank order.
	sort.SliceStable(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items
}

// countBy groups posts by key in first-seen order, then sorts descending by
// count keeping the first-seen order for ties.
func countBy(ds *domain.Dataset, key func(domain.Post) string) []CountItem {
	if ds == nil {
		return []CountItem{}
	}
	index := make(map[string]int)
	items := make([]CountItem, 0, 16)
	for _, p := range ds.Posts {
		k := key(p)
		if k == "" {
			continue
		}
		if i, ok := index[k]; ok {
			items[i].Count++
		} else {
			index[k] = len(items)
			items = append(items, CountItem{Label: k, Count: 1})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Count > items[j].Count })
	return items
}

// EmotionEmojiTree builds the emotion→emoji→count hierarchy for the treemap.
// Branches are ordered by total descending; leaves by count descending, both
// with first-seen tie-break.
func EmotionEmojiTree(ds *domain.Dataset) []EmotionBranch {
	if ds == nil {
		return []EmotionBranch{}
	}
	branchIdx := make(map[string]int)
	branches := make([]EmotionBranch, 0, 8)
	leafIdx := make(map[string]map[string]int)

	for _, p := range ds.Posts {
		if p.Emotion == "" || p.Emoji == "" {
			continue
		}
		bi, ok := branchIdx[p.Emotion]
		if !ok {
			bi = len(branches)
			branchIdx[p.Emotion] = bi
			branches = append(branches, EmotionBranch{Emotion: p.Emotion})
			leafIdx[p.Emotion] = make(map[string]int)
		}
		branches[bi].Total++
		li, ok := leafIdx[p.Emotion][p.Emoji]
		if !ok {
			li = len(branches[bi].Emojis)
			leafIdx[p.Emotion][p.Emoji] = li
			branches[bi].Emojis = append(branches[bi].Emojis, CountItem{Label: p.Emoji})
		}
		branches[bi].Emojis[li].Count++
	}

	for i := range branches {
		sort.SliceStable(branches[i].Emojis, func(a, b int) bool {
			return branches[i].Emojis[a].Count > branches[i].Emojis[b].Count
		})
	}
	sort.SliceStable(branches, func(i, j int) bool { return branches[i].Total > branches[j].Total })
	return branches
}

// TimeSeries counts posts per calendar day (UTC), sorted ascending by day.
func TimeSeries(ds *domain.Dataset) []TimeBucket {
	if ds == nil {
		return []TimeBucket{}
	}
	counts := make(map[time.Time]int)
	for _, p := range ds.Posts {
		counts[day(p.Date)]++
	}
	buckets := make([]TimeBucket, 0, len(counts))
	for d, c := range counts {
		buckets = append(buckets, TimeBucket{Day: d, Count: c})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Day.Before(buckets[j].Day) })
	return buckets
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EmojiSentimentCrossTab counts posts per (emoji, sentiment) pair, restricted
// to the topN emojis by overall frequency. Row order follows the frequency
// ranking; column order is first-seen sentiment order.
func EmojiSentimentCrossTab(ds *domain.Dataset, topN int) CrossTab {
	top := EmojiFrequency(ds, topN)
	emojis := make([]string, len(top))
	rowIdx := make(map[string]int, len(top))
	for i, item := range top {
		emojis[i] = item.Label
		rowIdx[item.Label] = i
	}

	sentiments := ds.Sentiments()
	colIdx := make(map[string]int, len(sentiments))
	for i, s := range sentiments {
		colIdx[s] = i
	}

	counts := make([][]int, len(emojis))
	for i := range counts {
		counts[i] = make([]int, len(sentiments))
	}
	if ds != nil {
		for _, p := range ds.Posts {
			ri, ok := rowIdx[p.Emoji]
			if !ok {
				continue
			}
			ci, ok := colIdx[p.Sentiment]
			if !ok {
				continue
			}
			counts[ri][ci]++
		}
	}
	return CrossTab{Emojis: emojis, Sentiments: sentiments, Counts: counts}
}

// TweetLengthBySentiment groups the rune length of each post's text by
// sentiment, retaining the full per-post distribution for shape plots
// (violin) alongside the mean for the radar chart.
func TweetLengthBySentiment(ds *domain.Dataset) []SentimentLengths {
	if ds == nil {
		return []SentimentLengths{}
	}
	idx := make(map[string]int)
	groups := make([]SentimentLengths, 0, 4)
	for _, p := range ds.Posts {
		if p.Sentiment == "" {
			continue
		}
		gi, ok := idx[p.Sentiment]
		if !ok {
			gi = len(groups)
			idx[p.Sentiment] = gi
			groups = append(groups, SentimentLengths{Sentiment: p.Sentiment})
		}
		groups[gi].Lengths = append(groups[gi].Lengths, utf8.RuneCountInString(p.TweetText))
	}
	for i := range groups {
		sum := 0
		for _, l := range groups[i].Lengths {
			sum += l
		}
		if n := len(groups[i].Lengths); n > 0 {
			groups[i].Mean = float64(sum) / float64(n)
		}
	}
	return groups
}

// EmojiCooccurrence counts, for every post whose emoji field contains more
// than one glyph, each unordered pair of distinct glyphs appearing together.
// The returned matrix is symmetric over the topN emoji-glyph set; diagonal
// cells count posts containing the glyph at all.
func EmojiCooccurrence(ds *domain.Dataset, topN int) Cooccurrence {
	topN = ClampTopN(topN)

	// Rank individual glyphs, not whole emoji-field values: a field like
	// "🎉❤️" contributes to both glyphs' ranks.
	glyphIdx := make(map[string]int)
	glyphs := make([]CountItem, 0, 32)
	perPost := make([][]string, 0, ds.Len())
	if ds != nil {
		for _, p := range ds.Posts {
			gs := SplitEmoji(p.Emoji)
			perPost = append(perPost, gs)
			for _, g := range gs {
				if i, ok := glyphIdx[g]; ok {
					glyphs[i].Count++
				} else {
					glyphIdx[g] = len(glyphs)
					glyphs = append(glyphs, CountItem{Label: g, Count: 1})
				}
			}
		}
	}
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].Count > glyphs[j].Count })
	if len(glyphs) > topN {
		glyphs = glyphs[:topN]
	}

	labels := make([]string, len(glyphs))
	pos := make(map[string]int, len(glyphs))
	for i, g := range glyphs {
		labels[i] = g.Label
		pos[g.Label] = i
	}

	counts := make([][]int, len(labels))
	for i := range counts {
		counts[i] = make([]int, len(labels))
	}
	for _, gs := range perPost {
		seen := make(map[int]struct{}, len(gs))
		var present []int
		for _, g := range gs {
			if i, ok := pos[g]; ok {
				if _, dup := seen[i]; !dup {
					seen[i] = struct{}{}
					present = append(present, i)
				}
			}
		}
		for _, i := range present {
			counts[i][i]++
		}
		for a := 0; a < len(present); a++ {
			for b := a + 1; b < len(present); b++ {
				i, j := present[a], present[b]
				counts[i][j]++
				counts[j][i]++
			}
		}
	}
	return Cooccurrence{Emojis: labels, Counts: counts}
}

// SplitEmoji splits an emoji field into its constituent glyphs using
// grapheme-cluster segmentation, so multi-codepoint emoji (ZWJ sequences,
// variation selectors, skin tones) stay intact. Whitespace and separator
// clusters are dropped.
func SplitEmoji(field string) []string {
	if field == "" {
		return nil
	}
	var out []string
	state := -1
	rest := field
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if isSeparator(cluster) {
			continue
		}
		out = append(out, cluster)
	}
	return out
}

func isSeparator(cluster string) bool {
	trimmed := strings.TrimFunc(cluster, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';'
	})
	return trimmed == ""
}

// PositiveRatio returns count(sentiment == Positive) / total as a value in
// [0, 1], and 0 for an empty dataset.
func PositiveRatio(ds *domain.Dataset) float64 {
	if ds.Len() == 0 {
		return 0
	}
	positive := 0
	for _, p := range ds.Posts {
		if p.Sentiment == domain.SentimentPositive {
			positive++
		}
	}
	return float64(positive) / float64(ds.Len())
}

// SentimentOverTime counts posts per (day, sentiment) for the stacked area
// chart. Days ascend; sentiment order is first-seen.
func SentimentOverTime(ds *domain.Dataset) SentimentSeries {
	sentiments := ds.Sentiments()
	colIdx := make(map[string]int, len(sentiments))
	for i, s := range sentiments {
		colIdx[s] = i
	}

	dayCounts := make(map[time.Time][]int)
	if ds != nil {
		for _, p := range ds.Posts {
			d := day(p.Date)
			row, ok := dayCounts[d]
			if !ok {
				row = make([]int, len(sentiments))
				dayCounts[d] = row
			}
			if ci, ok := colIdx[p.Sentiment]; ok {
				row[ci]++
			}
		}
	}

	days := make([]time.Time, 0, len(dayCounts))
	for d := range dayCounts {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	counts := make([][]int, len(sentiments))
	for si := range sentiments {
		counts[si] = make([]int, len(days))
		for di, d := range days {
			counts[si][di] = dayCounts[d][si]
		}
	}
	return SentimentSeries{Days: days, Sentiments: sentiments, Counts: counts}
}

// EmojiActivityOverTime counts posts per (day, emoji, sentiment), restricted
// to the topN emojis, for the scatter and bubble charts. Observations are
// ordered by day, then by emoji rank.
func EmojiActivityOverTime(ds *domain.Dataset, topN int) []EmojiActivity {
	top := EmojiFrequency(ds, topN)
	rank := make(map[string]int, len(top))
	for i, item := range top {
		rank[item.Label] = i
	}

	type cellKey struct {
		day       time.Time
		emoji     string
		sentiment string
	}
	counts := make(map[cellKey]int)
	if ds != nil {
		for _, p := range ds.Posts {
			if _, ok := rank[p.Emoji]; !ok {
				continue
			}
			counts[cellKey{day(p.Date), p.Emoji, p.Sentiment}]++
		}
	}

	out := make([]EmojiActivity, 0, len(counts))
	for k, c := range counts {
		out = append(out, EmojiActivity{Day: k.day, Emoji: k.emoji, Sentiment: k.sentiment, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		if out[i].Emoji != out[j].Emoji {
			return rank[out[i].Emoji] < rank[out[j].Emoji]
		}
		return out[i].Sentiment < out[j].Sentiment
	})
	return out
}

// FestivalFlows builds the festival→sentiment and sentiment→emoji link counts
// for the sankey diagram, restricted to posts whose emoji ranks in the topN.
func FestivalFlows(ds *domain.Dataset, topN int) Flows {
	top := EmojiFrequency(ds, topN)
	emojiSet := make(map[string]struct{}, len(top))
	emojis := make([]string, len(top))
	for i, item := range top {
		emojis[i] = item.Label
		emojiSet[item.Label] = struct{}{}
	}

	fsCounts := make(map[[2]string]int)
	seCounts := make(map[[2]string]int)
	var festivals, sentiments []string
	seenF := make(map[string]struct{})
	seenS := make(map[string]struct{})

	if ds != nil {
		for _, p := range ds.Posts {
			if _, ok := emojiSet[p.Emoji]; !ok {
				continue
			}
			if _, ok := seenF[p.Festival]; !ok && p.Festival != "" {
				seenF[p.Festival] = struct{}{}
				festivals = append(festivals, p.Festival)
			}
			if _, ok := seenS[p.Sentiment]; !ok && p.Sentiment != "" {
				seenS[p.Sentiment] = struct{}{}
				sentiments = append(sentiments, p.Sentiment)
			}
			fsCounts[[2]string{p.Festival, p.Sentiment}]++
			seCounts[[2]string{p.Sentiment, p.Emoji}]++
		}
	}

	links := make([]FlowLink, 0, len(fsCounts)+len(seCounts))
	for _, f := range festivals {
		for _, s := range sentiments {
			if c := fsCounts[[2]string{f, s}]; c > 0 {
				links = append(links, FlowLink{Source: f, Target: s, Count: c})
			}
		}
	}
	for _, s := range sentiments {
		for _, e := range emojis {
			if c := seCounts[[2]string{s, e}]; c > 0 {
				links = append(links, FlowLink{Source: s, Target: e, Count: c})
			}
		}
	}
	return Flows{Festivals: festivals, Sentiments: sentiments, Emojis: emojis, Links: links}
}

// Summarize computes the KPI row over the filtered dataset.
func Summarize(ds *domain.Dataset) Summary {
	s := Summary{TotalPosts: ds.Len(), TopEmotion: "N/A", TopEmoji: "N/A"}
	if ds.Len() == 0 {
		return s
	}
	if emojis := countBy(ds, func(p domain.Post) string { return p.Emoji }); len(emojis) > 0 {
		s.UniqueEmojis = len(emojis)
		s.TopEmoji = emojis[0].Label
	}
	if emotions := countBy(ds, func(p domain.Post) string { return p.Emotion }); len(emotions) > 0 {
		s.TopEmotion = emotions[0].Label
	}
	s.PositiveRatio = PositiveRatio(ds)
	return s
}
