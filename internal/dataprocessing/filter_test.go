package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"festivalpulse/pkg/contracts/domain"
)

func testDataset() *domain.Dataset {
	return &domain.Dataset{
		Source: "festival.xlsx",
		Posts: []domain.Post{
			{Festival: "Diwali", Sentiment: "Positive", Emoji: "🎉", Emotion: "joy", TweetText: "a"},
			{Festival: "Holi", Sentiment: "Negative", Emoji: "😢", Emotion: "sadness", TweetText: "b"},
			{Festival: "Diwali", Sentiment: "Neutral", Emoji: "🙏", Emotion: "calm", TweetText: "c"},
			{Festival: "Eid", Sentiment: "Positive", Emoji: "🎉", Emotion: "joy", TweetText: "d"},
			{Festival: "Holi", Sentiment: "Positive", Emoji: "❤️", Emotion: "love", TweetText: "e"},
		},
	}
}

func TestFilter(t *testing.T) {
	t.Run("empty selection is the identity", func(t *testing.T) {
		ds := testDataset()
		got := Filter(ds, domain.FilterSelection{})
		assert.Equal(t, ds.Posts, got.Posts)
	})

	t.Run("festival subset", func(t *testing.T) {
		got := Filter(testDataset(), domain.FilterSelection{Festivals: []string{"Diwali"}})
		assert.Equal(t, 2, got.Len())
		for _, p := range got.Posts {
			assert.Equal(t, "Diwali", p.Festival)
		}
	})

	t.Run("dimensions combine conjunctively", func(t *testing.T) {
		got := Filter(testDataset(), domain.FilterSelection{
			Festivals:  []string{"Diwali", "Holi"},
			Sentiments: []string{"Positive"},
		})
		assert.Equal(t, 2, got.Len())
		assert.Equal(t, "a", got.Posts[0].TweetText)
		assert.Equal(t, "e", got.Posts[1].TweetText)
	})

	t.Run("result is an order-preserving subsequence", func(t *testing.T) {
		ds := testDataset()
		got := Filter(ds, domain.FilterSelection{Sentiments: []string{"Positive"}})

		// Walk the original and check the filtered rows appear in order
		j := 0
		for _, p := range ds.Posts {
			if j < got.Len() && p == got.Posts[j] {
				j++
			}
		}
		assert.Equal(t, got.Len(), j)
	})

	t.Run("no matches yields empty dataset not error", func(t *testing.T) {
		got := Filter(testDataset(), domain.FilterSelection{Festivals: []string{"Christmas"}})
		assert.Equal(t, 0, got.Len())
		assert.NotNil(t, got.Posts)
	})

	t.Run("nil dataset is safe", func(t *testing.T) {
		got := Filter(nil, domain.FilterSelection{Festivals: []string{"Diwali"}})
		assert.Equal(t, 0, got.Len())
	})

	t.Run("metadata survives filtering", func(t *testing.T) {
		got := Filter(testDataset(), domain.FilterSelection{Festivals: []string{"Eid"}})
		assert.Equal(t, "festival.xlsx", got.Source)
	})
}
