package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festivalpulse/pkg/contracts/domain"
)

func dsOf(posts ...domain.Post) *domain.Dataset {
	return &domain.Dataset{Posts: posts}
}

func TestClampTopN(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultTopN},
		{-5, DefaultTopN},
		{1, 1},
		{10, 10},
		{50, 50},
		{51, MaxTopN},
		{1000, MaxTopN},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampTopN(tt.in))
	}
}

func TestEmojiFrequency(t *testing.T) {
	ds := dsOf(
		domain.Post{Emoji: "🎉"},
		domain.Post{Emoji: "😢"},
		domain.Post{Emoji: "🎉"},
		domain.Post{Emoji: "🙏"},
		domain.Post{Emoji: "🎉"},
		domain.Post{Emoji: "😢"},
	)

	t.Run("sorted descending", func(t *testing.T) {
		got := EmojiFrequency(ds, 10)
		require.Len(t, got, 3)
		assert.Equal(t, CountItem{Label: "🎉", Count: 3}, got[0])
		assert.Equal(t, CountItem{Label: "😢", Count: 2}, got[1])
		assert.Equal(t, CountItem{Label: "🙏", Count: 1}, got[2])
	})

	t.Run("ties break by first seen", func(t *testing.T) {
		tied := dsOf(
			domain.Post{Emoji: "🙏"},
			domain.Post{Emoji: "🎉"},
			domain.Post{Emoji: "🙏"},
			domain.Post{Emoji: "🎉"},
		)
		got := EmojiFrequency(tied, 10)
		require.Len(t, got, 2)
		assert.Equal(t, "🙏", got[0].Label)
		assert.Equal(t, "🎉", got[1].Label)
	})

	t.Run("truncates to top n", func(t *testing.T) {
		got := EmojiFrequency(ds, 2)
		assert.Len(t, got, 2)
	})

	t.Run("empty dataset", func(t *testing.T) {
		assert.Empty(t, EmojiFrequency(dsOf(), 5))
		assert.Empty(t, EmojiFrequency(nil, 5))
	})
}

func TestSentimentDistribution(t *testing.T) {
	ds := dsOf(
		domain.Post{Sentiment: "Positive"},
		domain.Post{Sentiment: "Negative"},
		domain.Post{Sentiment: "Positive"},
		domain.Post{Sentiment: "Neutral"},
	)

	got := SentimentDistribution(ds)
	require.Len(t, got, 3)

	// Counts partition the dataset
	total := 0
	for _, item := range got {
		total += item.Count
	}
	assert.Equal(t, ds.Len(), total)

	// Label-sorted for stable pie rendering
	assert.Equal(t, "Negative", got[0].Label)
	assert.Equal(t, "Neutral", got[1].Label)
	assert.Equal(t, "Positive", got[2].Label)
}

func TestEmotionEmojiTree(t *testing.T) {
	ds := dsOf(
		domain.Post{Emotion: "joy", Emoji: "🎉"},
		domain.Post{Emotion: "joy", Emoji: "🎉"},
		domain.Post{Emotion: "joy", Emoji: "❤️"},
		domain.Post{Emotion: "sadness", Emoji: "😢"},
		domain.Post{Emotion: "", Emoji: "🙏"},
	)

	got := EmotionEmojiTree(ds)
	require.Len(t, got, 2)

	assert.Equal(t, "joy", got[0].Emotion)
	assert.Equal(t, 3, got[0].Total)
	require.Len(t, got[0].Emojis, 2)
	assert.Equal(t, CountItem{Label: "🎉", Count: 2}, got[0].Emojis[0])

	assert.Equal(t, "sadness", got[1].Emotion)
	assert.Equal(t, 1, got[1].Total)
}

func TestTimeSeries(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC)
	ds := dsOf(
		domain.Post{Date: d2},
		domain.Post{Date: d1},
		domain.Post{Date: d1.Add(2 * time.Hour)},
	)

	got := TimeSeries(ds)
	require.Len(t, got, 2)

	// Buckets ascend and are truncated to UTC midnight
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got[0].Day)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), got[1].Day)
	assert.Equal(t, 1, got[1].Count)
}

func TestEmojiSentimentCrossTab(t *testing.T) {
	ds := dsOf(
		domain.Post{Emoji: "🎉", Sentiment: "Positive"},
		domain.Post{Emoji: "🎉", Sentiment: "Positive"},
		domain.Post{Emoji: "🎉", Sentiment: "Negative"},
		domain.Post{Emoji: "😢", Sentiment: "Negative"},
	)

	got := EmojiSentimentCrossTab(ds, 10)
	require.Equal(t, []string{"🎉", "😢"}, got.Emojis)
	require.Equal(t, []string{"Positive", "Negative"}, got.Sentiments)
	require.Len(t, got.Counts, 2)

	assert.Equal(t, []int{2, 1}, got.Counts[0])
	assert.Equal(t, []int{0, 1}, got.Counts[1])
}

func TestTweetLengthBySentiment(t *testing.T) {
	ds := dsOf(
		domain.Post{Sentiment: "Positive", TweetText: "abcd"},
		domain.Post{Sentiment: "Positive", TweetText: "ab"},
		domain.Post{Sentiment: "Negative", TweetText: "🎉🎉"},
	)

	got := TweetLengthBySentiment(ds)
	require.Len(t, got, 2)

	assert.Equal(t, "Positive", got[0].Sentiment)
	assert.Equal(t, []int{4, 2}, got[0].Lengths)
	assert.InDelta(t, 3.0, got[0].Mean, 1e-9)

	// Lengths count runes, not bytes
	assert.Equal(t, []int{2}, got[1].Lengths)
}

func TestSplitEmoji(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single", "🎉", []string{"🎉"}},
		{"two glyphs", "🎉❤️", []string{"🎉", "❤️"}},
		{"variation selector stays attached", "❤️🙏", []string{"❤️", "🙏"}},
		{"zwj sequence is one glyph", "👩‍💻🎉", []string{"👩‍💻", "🎉"}},
		{"separators dropped", "🎉, ❤️; 🙏", []string{"🎉", "❤️", "🙏"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitEmoji(tt.in))
		})
	}
}

func TestEmojiCooccurrence(t *testing.T) {
	ds := dsOf(
		domain.Post{Emoji: "🎉❤️"},
		domain.Post{Emoji: "❤️🙏"},
		domain.Post{Emoji: "🎉"},
	)

	got := EmojiCooccurrence(ds, 10)
	require.Len(t, got.Emojis, 3)

	idx := make(map[string]int)
	for i, e := range got.Emojis {
		idx[e] = i
	}
	party, heart, pray := idx["🎉"], idx["❤️"], idx["🙏"]

	// Diagonal counts posts containing the glyph
	assert.Equal(t, 2, got.Counts[party][party])
	assert.Equal(t, 2, got.Counts[heart][heart])
	assert.Equal(t, 1, got.Counts[pray][pray])

	// Off-diagonal pair counts
	assert.Equal(t, 1, got.Counts[party][heart])
	assert.Equal(t, 1, got.Counts[heart][pray])
	assert.Equal(t, 0, got.Counts[party][pray])

	// Symmetry
	for i := range got.Counts {
		for j := range got.Counts[i] {
			assert.Equal(t, got.Counts[i][j], got.Counts[j][i])
		}
	}
}

func TestPositiveRatio(t *testing.T) {
	t.Run("empty is zero", func(t *testing.T) {
		assert.Zero(t, PositiveRatio(dsOf()))
		assert.Zero(t, PositiveRatio(nil))
	})

	t.Run("ratio within bounds", func(t *testing.T) {
		ds := dsOf(
			domain.Post{Sentiment: "Positive"},
			domain.Post{Sentiment: "Negative"},
			domain.Post{Sentiment: "Positive"},
			domain.Post{Sentiment: "Neutral"},
		)
		got := PositiveRatio(ds)
		assert.InDelta(t, 0.5, got, 1e-9)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	})

	t.Run("all positive", func(t *testing.T) {
		ds := dsOf(domain.Post{Sentiment: "Positive"})
		assert.InDelta(t, 1.0, PositiveRatio(ds), 1e-9)
	})
}

func TestSentimentOverTime(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	ds := dsOf(
		domain.Post{Date: d1, Sentiment: "Positive"},
		domain.Post{Date: d1, Sentiment: "Negative"},
		domain.Post{Date: d2, Sentiment: "Positive"},
	)

	got := SentimentOverTime(ds)
	require.Equal(t, []string{"Positive", "Negative"}, got.Sentiments)
	require.Equal(t, []time.Time{d1, d2}, got.Days)

	assert.Equal(t, []int{1, 1}, got.Counts[0])
	assert.Equal(t, []int{1, 0}, got.Counts[1])
}

func TestEmojiActivityOverTime(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	ds := dsOf(
		domain.Post{Date: d2, Emoji: "🎉", Sentiment: "Positive"},
		domain.Post{Date: d1, Emoji: "🎉", Sentiment: "Positive"},
		domain.Post{Date: d1, Emoji: "🎉", Sentiment: "Positive"},
		domain.Post{Date: d1, Emoji: "😢", Sentiment: "Negative"},
	)

	got := EmojiActivityOverTime(ds, 10)
	require.Len(t, got, 3)

	// Ordered by day, then by emoji frequency rank
	assert.Equal(t, d1, got[0].Day)
	assert.Equal(t, "🎉", got[0].Emoji)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, "😢", got[1].Emoji)
	assert.Equal(t, d2, got[2].Day)
}

func TestFestivalFlows(t *testing.T) {
	ds := dsOf(
		domain.Post{Festival: "Diwali", Sentiment: "Positive", Emoji: "🎉"},
		domain.Post{Festival: "Diwali", Sentiment: "Positive", Emoji: "🎉"},
		domain.Post{Festival: "Holi", Sentiment: "Negative", Emoji: "😢"},
	)

	got := FestivalFlows(ds, 10)
	assert.Equal(t, []string{"Diwali", "Holi"}, got.Festivals)
	assert.Equal(t, []string{"Positive", "Negative"}, got.Sentiments)
	assert.Equal(t, []string{"🎉", "😢"}, got.Emojis)

	require.Len(t, got.Links, 4)
	assert.Equal(t, FlowLink{Source: "Diwali", Target: "Positive", Count: 2}, got.Links[0])
	assert.Equal(t, FlowLink{Source: "Holi", Target: "Negative", Count: 1}, got.Links[1])
	assert.Equal(t, FlowLink{Source: "Positive", Target: "🎉", Count: 2}, got.Links[2])
	assert.Equal(t, FlowLink{Source: "Negative", Target: "😢", Count: 1}, got.Links[3])

	// Stage totals agree
	fsTotal, seTotal := 0, 0
	for _, l := range got.Links {
		if l.Source == "Diwali" || l.Source == "Holi" {
			fsTotal += l.Count
		} else {
			seTotal += l.Count
		}
	}
	assert.Equal(t, fsTotal, seTotal)
}

func TestSummarize(t *testing.T) {
	t.Run("empty dataset", func(t *testing.T) {
		got := Summarize(dsOf())
		assert.Equal(t, 0, got.TotalPosts)
		assert.Equal(t, "N/A", got.TopEmotion)
		assert.Equal(t, "N/A", got.TopEmoji)
		assert.Zero(t, got.PositiveRatio)
	})

	t.Run("kpis over data", func(t *testing.T) {
		ds := dsOf(
			domain.Post{Emoji: "🎉", Emotion: "joy", Sentiment: "Positive"},
			domain.Post{Emoji: "🎉", Emotion: "joy", Sentiment: "Positive"},
			domain.Post{Emoji: "😢", Emotion: "sadness", Sentiment: "Negative"},
		)
		got := Summarize(ds)
		assert.Equal(t, 3, got.TotalPosts)
		assert.Equal(t, 2, got.UniqueEmojis)
		assert.Equal(t, "joy", got.TopEmotion)
		assert.Equal(t, "🎉", got.TopEmoji)
		assert.InDelta(t, 2.0/3.0, got.PositiveRatio, 1e-9)
	})

	t.Run("mode ties break by first seen", func(t *testing.T) {
		ds := dsOf(
			domain.Post{Emoji: "🙏", Emotion: "calm", Sentiment: "Neutral"},
			domain.Post{Emoji: "🎉", Emotion: "joy", Sentiment: "Positive"},
		)
		got := Summarize(ds)
		assert.Equal(t, "🙏", got.TopEmoji)
		assert.Equal(t, "calm", got.TopEmotion)
	})
}

func TestFilterAggregateScenario(t *testing.T) {
	// A filtered view feeds every aggregate without special cases.
	ds := dsOf(
		domain.Post{Festival: "Diwali", Sentiment: "Positive", Emoji: "🎉", Emotion: "joy", TweetText: "lights", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		domain.Post{Festival: "Holi", Sentiment: "Positive", Emoji: "❤️", Emotion: "love", TweetText: "colors", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		domain.Post{Festival: "Diwali", Sentiment: "Negative", Emoji: "😢", Emotion: "sadness", TweetText: "smoke", Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
	)

	filtered := Filter(ds, domain.FilterSelection{Festivals: []string{"Diwali"}})
	require.Equal(t, 2, filtered.Len())

	freq := EmojiFrequency(filtered, 10)
	assert.Len(t, freq, 2)

	summary := Summarize(filtered)
	assert.Equal(t, 2, summary.TotalPosts)
	assert.InDelta(t, 0.5, summary.PositiveRatio, 1e-9)

	empty := Filter(ds, domain.FilterSelection{Festivals: []string{"Christmas"}})
	assert.Empty(t, EmojiFrequency(empty, 10))
	assert.Empty(t, TimeSeries(empty))
	assert.Zero(t, PositiveRatio(empty))
	assert.Equal(t, "N/A", Summarize(empty).TopEmoji)
}
