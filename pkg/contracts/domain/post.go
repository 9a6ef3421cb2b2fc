// Package domain contains the core data contracts shared between the
// data-processing pipeline and the HTTP transport layer.
package domain

import "time"

// Sentiment labels recognised by the dashboard. The Sentiment column may
// carry other values; only Positive participates in the positive-ratio gauge.
const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
)

// Spreadsheet column headers. Required columns must be present verbatim
// (case-sensitive) in the uploaded file's header row; optional columns are
// synthesized by the loader when absent.
const (
	ColumnFestival  = "Festival"
	ColumnSentiment = "Sentiment"
	ColumnEmoji     = "Emoji"
	ColumnEmotion   = "Emotion"
	ColumnTweet     = "Tweet"
	ColumnDate      = "Date"
	ColumnAuthorID  = "Author_ID"
	ColumnTweetID   = "Tweet_ID"
)

// RequiredColumns is the set of headers the validator demands before any
// aggregation runs. Order matters for stable error reporting.
var RequiredColumns = []string{
	ColumnFestival,
	ColumnSentiment,
	ColumnEmoji,
	ColumnEmotion,
	ColumnTweet,
}

// OptionalColumns are synthesized on load when missing from the header row.
var OptionalColumns = []string{
	ColumnDate,
	ColumnAuthorID,
	ColumnTweetID,
}

// Post is one social-media record. After validation passes, every Post in a
// Dataset has all five required fields non-empty; Date, AuthorID and PostID
// are always populated (real or synthetic).
type Post struct {
	Festival  string    `json:"festival"`
	Sentiment string    `json:"sentiment"`
	Emoji     string    `json:"emoji"`
	Emotion   string    `json:"emotion"`
	TweetText string    `json:"tweet_text"`
	Date      time.Time `json:"date"`
	AuthorID  string    `json:"author_id"`
	PostID    string    `json:"post_id"`

	// Synthetic reports whether Date was generated rather than read from the
	// file. Kept so the raw-data table can flag generated values.
	Synthetic bool `json:"synthetic,omitempty"`
}

// Dataset is the ordered collection of Posts loaded from one uploaded file.
// Order is load order; only time-series aggregation re-sorts (by bucket).
type Dataset struct {
	Posts    []Post    `json:"posts"`
	LoadedAt time.Time `json:"loaded_at"`
	Source   string    `json:"source"`

	// SyntheticColumns lists the optional columns that were generated because
	// the uploaded file did not carry them.
	SyntheticColumns []string `json:"synthetic_columns,omitempty"`
}

// Len returns the number of posts in the dataset.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Posts)
}

// Festivals returns the distinct festival values in first-seen order.
func (d *Dataset) Festivals() []string {
	return d.distinct(func(p Post) string { return p.Festival })
}

// Sentiments returns the distinct sentiment values in first-seen order.
func (d *Dataset) Sentiments() []string {
	return d.distinct(func(p Post) string { return p.Sentiment })
}

func (d *Dataset) distinct(key func(Post) string) []string {
	if d == nil {
		return nil
	}
	seen := make(map[string]struct{}, 8)
	var out []string
	for _, p := range d.Posts {
		k := key(p)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}
