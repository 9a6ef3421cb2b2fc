package dataprocessing

import "time"

// CountItem is one labelled count in a frequency-style aggregate.
type CountItem struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// EmotionBranch is one emotion node in the emotion→emoji hierarchy used by
// the treemap.
type EmotionBranch struct {
	Emotion string      `json:"emotion"`
	Total   int         `json:"total"`
	Emojis  []CountItem `json:"emojis"`
}

// TimeBucket is one day's post count. Day is truncated to midnight UTC.
type TimeBucket struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

// CrossTab is a dense emoji×sentiment count matrix. Counts is indexed
// [emoji][sentiment], aligned with the Emojis and Sentiments slices.
type CrossTab struct {
	Emojis     []string `json:"emojis"`
	Sentiments []string `json:"sentiments"`
	Counts     [][]int  `json:"counts"`
}

// SentimentLengths carries the full tweet-length distribution for one
// sentiment, plus its mean for summary-style charts. Lengths are rune counts
// in post order.
type SentimentLengths struct {
	Sentiment string  `json:"sentiment"`
	Lengths   []int   `json:"lengths"`
	Mean      float64 `json:"mean"`
}

// Cooccurrence is the symmetric pair-count matrix over the top-N emoji set.
// Counts[i][j] == Counts[j][i] for all i, j; the diagonal counts posts whose
// emoji field contains the glyph at all.
type Cooccurrence struct {
	Emojis []string `json:"emojis"`
	Counts [][]int  `json:"counts"`
}

// SentimentSeries holds per-day counts split by sentiment for the stacked
// area chart. Counts is indexed [sentiment][day].
type SentimentSeries struct {
	Days       []time.Time `json:"days"`
	Sentiments []string    `json:"sentiments"`
	Counts     [][]int     `json:"counts"`
}

// EmojiActivity is one (day, emoji, sentiment) observation count, feeding the
// scatter and bubble charts.
type EmojiActivity struct {
	Day       time.Time `json:"day"`
	Emoji     string    `json:"emoji"`
	Sentiment string    `json:"sentiment"`
	Count     int       `json:"count"`
}

// FlowLink is one weighted edge of the festival→sentiment→emoji sankey.
type FlowLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Count  int    `json:"count"`
}

// Flows collects the sankey's node labels (festivals, then sentiments, then
// the top-N emojis) and its edges.
type Flows struct {
	Festivals  []string   `json:"festivals"`
	Sentiments []string   `json:"sentiments"`
	Emojis     []string   `json:"emojis"`
	Links      []FlowLink `json:"links"`
}

// Summary is the KPI row: totals and modes over the filtered dataset.
// Modes break ties by first-seen order; empty datasets yield "N/A".
type Summary struct {
	TotalPosts    int     `json:"total_posts"`
	UniqueEmojis  int     `json:"unique_emojis"`
	TopEmotion    string  `json:"top_emotion"`
	TopEmoji      string  `json:"top_emoji"`
	PositiveRatio float64 `json:"positive_ratio"`
}
