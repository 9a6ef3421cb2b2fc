package charts

import (
	"fmt"
	"time"

	"festivalpulse/internal/dataprocessing"
)

// Chart identifiers, also used as URL path segments.
const (
	ChartEmojiFrequency   = "emoji-frequency"
	ChartSentimentSplit   = "sentiment-split"
	ChartEmotionTreemap   = "emotion-treemap"
	ChartTweetTrends      = "tweet-trends"
	ChartEmojiSentiment   = "emoji-sentiment"
	ChartLengthViolin     = "length-violin"
	ChartEmojiScatter     = "emoji-scatter"
	ChartLengthRadar      = "length-radar"
	ChartSentimentArea    = "sentiment-area"
	ChartPositiveGauge    = "positive-gauge"
	ChartFestivalSankey   = "festival-sankey"
	ChartCooccurrence     = "emoji-cooccurrence"
	ChartEmojiBubble      = "emoji-bubble"
	ChartCalendarHeatmap  = "calendar-heatmap"
)

// AllCharts is the dashboard's fixed chart ordering.
var AllCharts = []string{
	ChartEmojiFrequency,
	ChartSentimentSplit,
	ChartEmotionTreemap,
	ChartTweetTrends,
	ChartEmojiSentiment,
	ChartLengthViolin,
	ChartEmojiScatter,
	ChartLengthRadar,
	ChartSentimentArea,
	ChartPositiveGauge,
	ChartFestivalSankey,
	ChartCooccurrence,
	ChartEmojiBubble,
	ChartCalendarHeatmap,
}

const dayFormat = "2006-01-02"

// EmojiFrequencyBar renders the horizontal emoji ranking bar chart.
func EmojiFrequencyBar(freq []dataprocessing.CountItem) Spec {
	if len(freq) == 0 {
		return emptySpec(ChartEmojiFrequency, TypeBar, "Emoji Frequency Ranking")
	}
	labels := make([]string, len(freq))
	values := make([]float64, len(freq))
	for i, item := range freq {
		labels[i] = item.Label
		values[i] = float64(item.Count)
	}
	return Spec{
		ID:    ChartEmojiFrequency,
		Type:  TypeBar,
		Title: "Emoji Frequency Ranking",
		Scale: ScaleSequential,
		XAxis: &Axis{Title: "Count"},
		YAxis: &Axis{Title: "Emoji", Labels: labels},
		Series: []Series{{Name: "Count", Values: values}},
	}
}

// SentimentPie renders the sentiment split donut.
func SentimentPie(dist []dataprocessing.CountItem) Spec {
	if len(dist) == 0 {
		return emptySpec(ChartSentimentSplit, TypePie, "Sentiment Split")
	}
	labels := make([]string, len(dist))
	values := make([]float64, len(dist))
	for i, item := range dist {
		labels[i] = item.Label
		values[i] = float64(item.Count)
	}
	return Spec{
		ID:      ChartSentimentSplit,
		Type:    TypePie,
		Title:   "Sentiment Split",
		Palette: PaletteQualitative,
		XAxis:   &Axis{Labels: labels},
		Series:  []Series{{Name: "Posts", Values: values}},
	}
}

// EmotionTreemap renders the emotion→emoji hierarchy.
func EmotionTreemap(branches []dataprocessing.EmotionBranch) Spec {
	if len(branches) == 0 {
		return emptySpec(ChartEmotionTreemap, TypeTreemap, "Emotion Treemap")
	}
	tree := make([]TreeNode, len(branches))
	for i, b := range branches {
		node := TreeNode{Label: b.Emotion, Value: b.Total}
		for _, leaf := range b.Emojis {
			node.Children = append(node.Children, TreeNode{Label: leaf.Label, Value: leaf.Count})
		}
		tree[i] = node
	}
	return Spec{
		ID:      ChartEmotionTreemap,
		Type:    TypeTreemap,
		Title:   "Emotion Treemap",
		Palette: PaletteQualitative,
		Tree:    tree,
	}
}

// TweetTrendsLine renders the per-day post count line.
func TweetTrendsLine(series []dataprocessing.TimeBucket) Spec {
	if len(series) == 0 {
		return emptySpec(ChartTweetTrends, TypeLine, "Tweet Trends")
	}
	labels := make([]string, len(series))
	values := make([]float64, len(series))
	for i, b := range series {
		labels[i] = b.Day.Format(dayFormat)
		values[i] = float64(b.Count)
	}
	return Spec{
		ID:    ChartTweetTrends,
		Type:  TypeLine,
		Title: "Tweet Trends",
		XAxis: &Axis{Title: "Date", Labels: labels},
		YAxis: &Axis{Title: "Tweets"},
		Series: []Series{{Name: "Tweets", Color: ColorLine, Values: values}},
	}
}

// EmojiSentimentBar renders the grouped emoji×sentiment bar chart.
func EmojiSentimentBar(ct dataprocessing.CrossTab) Spec {
	if len(ct.Emojis) == 0 || len(ct.Sentiments) == 0 {
		return emptySpec(ChartEmojiSentiment, TypeBar, "Emoji vs Sentiment")
	}
	series := make([]Series, len(ct.Sentiments))
	for si, sentiment := range ct.Sentiments {
		values := make([]float64, len(ct.Emojis))
		for ei := range ct.Emojis {
			values[ei] = float64(ct.Counts[ei][si])
		}
		series[si] = Series{
			Name:   sentiment,
			Color:  PaletteQualitative[si%len(PaletteQualitative)],
			Values: values,
		}
	}
	return Spec{
		ID:     ChartEmojiSentiment,
		Type:   TypeBar,
		Title:  "Emoji vs Sentiment",
		XAxis:  &Axis{Title: "Emoji", Labels: ct.Emojis},
		YAxis:  &Axis{Title: "Count"},
		Series: series,
	}
}

// LengthViolin renders the tweet-length distribution per sentiment. The full
// distributions ride along so the renderer can draw density shapes.
func LengthViolin(groups []dataprocessing.SentimentLengths) Spec {
	if len(groups) == 0 {
		return emptySpec(ChartLengthViolin, TypeViolin, "Tweet Length Distribution")
	}
	series := make([]Series, len(groups))
	for i, g := range groups {
		values := make([]float64, len(g.Lengths))
		for j, l := range g.Lengths {
			values[j] = float64(l)
		}
		series[i] = Series{
			Name:   g.Sentiment,
			Color:  PaletteQualitative[i%len(PaletteQualitative)],
			Values: values,
		}
	}
	return Spec{
		ID:     ChartLengthViolin,
		Type:   TypeViolin,
		Title:  "Tweet Length Distribution",
		XAxis:  &Axis{Title: "Sentiment"},
		YAxis:  &Axis{Title: "Tweet Length (characters)"},
		Series: series,
	}
}

// EmojiScatter renders emoji activity over time, colored by sentiment.
func EmojiScatter(activity []dataprocessing.EmojiActivity) Spec {
	if len(activity) == 0 {
		return emptySpec(ChartEmojiScatter, TypeScatter, "Emoji Activity Over Time")
	}
	return Spec{
		ID:      ChartEmojiScatter,
		Type:    TypeScatter,
		Title:   "Emoji Activity Over Time",
		Palette: PaletteQualitative,
		XAxis:   &Axis{Title: "Date"},
		YAxis:   &Axis{Title: "Emoji"},
		Series:  activityBySentiment(activity, false),
	}
}

// EmojiBubble renders the same activity with counts as bubble sizes, one
// frame per day for animated playback.
func EmojiBubble(activity []dataprocessing.EmojiActivity) Spec {
	if len(activity) == 0 {
		return emptySpec(ChartEmojiBubble, TypeBubble, "Emoji Popularity Over Time")
	}
	return Spec{
		ID:      ChartEmojiBubble,
		Type:    TypeBubble,
		Title:   "Emoji Popularity Over Time",
		Palette: PaletteQualitative,
		XAxis:   &Axis{Title: "Date"},
		YAxis:   &Axis{Title: "Emoji"},
		Series:  activityBySentiment(activity, true),
	}
}

func activityBySentiment(activity []dataprocessing.EmojiActivity, sized bool) []Series {
	idx := make(map[string]int)
	var series []Series
	for _, a := range activity {
		si, ok := idx[a.Sentiment]
		if !ok {
			si = len(series)
			idx[a.Sentiment] = si
			series = append(series, Series{
				Name:  a.Sentiment,
				Color: PaletteQualitative[si%len(PaletteQualitative)],
			})
		}
		pt := Point{X: a.Day.Format(dayFormat), Label: a.Emoji, Y: float64(a.Count)}
		if sized {
			pt.Size = float64(a.Count)
		}
		series[si].Points = append(series[si].Points, pt)
	}
	return series
}

// LengthRadar renders mean tweet length per sentiment as a closed polar line.
func LengthRadar(groups []dataprocessing.SentimentLengths) Spec {
	if len(groups) == 0 {
		return emptySpec(ChartLengthRadar, TypeRadar, "Tweet Length vs Sentiment")
	}
	labels := make([]string, len(groups))
	values := make([]float64, len(groups))
	for i, g := range groups {
		labels[i] = g.Sentiment
		values[i] = g.Mean
	}
	return Spec{
		ID:     ChartLengthRadar,
		Type:   TypeRadar,
		Title:  "Tweet Length vs Sentiment",
		XAxis:  &Axis{Labels: labels},
		Series: []Series{{Name: "Mean length", Color: ColorAccent, Values: values}},
	}
}

// SentimentArea renders per-sentiment post counts stacked over time.
func SentimentArea(series dataprocessing.SentimentSeries) Spec {
	if len(series.Days) == 0 {
		return emptySpec(ChartSentimentArea, TypeStackedArea, "Sentiment Over Time")
	}
	labels := make([]string, len(series.Days))
	for i, d := range series.Days {
		labels[i] = d.Format(dayFormat)
	}
	out := make([]Series, len(series.Sentiments))
	for si, sentiment := range series.Sentiments {
		values := make([]float64, len(series.Days))
		for di := range series.Days {
			values[di] = float64(series.Counts[si][di])
		}
		out[si] = Series{
			Name:   sentiment,
			Color:  PaletteQualitative[si%len(PaletteQualitative)],
			Values: values,
		}
	}
	return Spec{
		ID:     ChartSentimentArea,
		Type:   TypeStackedArea,
		Title:  "Sentiment Over Time",
		XAxis:  &Axis{Title: "Date", Labels: labels},
		YAxis:  &Axis{Title: "Tweets"},
		Series: out,
	}
}

// PositiveGauge renders the positive-sentiment ratio as a 0–100 dial with
// red/amber/green bands.
func PositiveGauge(ratio float64, totalPosts int) Spec {
	spec := Spec{
		ID:    ChartPositiveGauge,
		Type:  TypeGauge,
		Title: "Positive Tweets (%)",
		Value: ratio * 100,
		Bands: []GaugeBand{
			{From: 0, To: 30, Color: ColorLow},
			{From: 30, To: 60, Color: ColorMid},
			{From: 60, To: 100, Color: ColorHigh},
		},
	}
	if totalPosts == 0 {
		spec.Empty = true
		spec.Note = EmptyNote
		spec.Value = 0
	}
	return spec
}

// FestivalSankey renders the festival→sentiment→emoji flow diagram. Node
// labels are festivals, then sentiments, then emojis, with links by index.
func FestivalSankey(flows dataprocessing.Flows) Spec {
	if len(flows.Links) == 0 {
		return emptySpec(ChartFestivalSankey, TypeSankey, "Festival → Sentiment → Emoji")
	}
	labels := make([]string, 0, len(flows.Festivals)+len(flows.Sentiments)+len(flows.Emojis))
	labels = append(labels, flows.Festivals...)
	labels = append(labels, flows.Sentiments...)
	labels = append(labels, flows.Emojis...)
	pos := make(map[string]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}
	links := make([]Link, 0, len(flows.Links))
	for _, fl := range flows.Links {
		src, okS := pos[fl.Source]
		dst, okT := pos[fl.Target]
		if !okS || !okT {
			continue
		}
		links = append(links, Link{Source: src, Target: dst, Value: fl.Count})
	}
	return Spec{
		ID:     ChartFestivalSankey,
		Type:   TypeSankey,
		Title:  "Festival → Sentiment → Emoji",
		Labels: labels,
		Links:  links,
	}
}

// CooccurrenceHeatmap renders the symmetric emoji pair-count matrix.
func CooccurrenceHeatmap(matrix dataprocessing.Cooccurrence) Spec {
	if len(matrix.Emojis) == 0 {
		return emptySpec(ChartCooccurrence, TypeHeatmap, "Emoji Co-occurrence Matrix")
	}
	return Spec{
		ID:     ChartCooccurrence,
		Type:   TypeHeatmap,
		Title:  "Emoji Co-occurrence Matrix",
		Scale:  ScaleHeat,
		XAxis:  &Axis{Labels: matrix.Emojis},
		YAxis:  &Axis{Labels: matrix.Emojis},
		Matrix: matrix.Counts,
	}
}

// CalendarHeatmap renders per-day counts on an ISO-week × weekday grid
// (weekday 0 = Monday), github-contribution style.
func CalendarHeatmap(series []dataprocessing.TimeBucket) Spec {
	if len(series) == 0 {
		return emptySpec(ChartCalendarHeatmap, TypeCalendar, "Calendar Heatmap")
	}

	weekIdx := make(map[string]int)
	var weeks []string
	cells := make(map[[2]int]int)
	for _, b := range series {
		year, week := b.Day.ISOWeek()
		key := fmt.Sprintf("%d-W%02d", year, week)
		wi, ok := weekIdx[key]
		if !ok {
			wi = len(weeks)
			weekIdx[key] = wi
			weeks = append(weeks, key)
		}
		cells[[2]int{wi, weekdayMonday(b.Day)}] += b.Count
	}

	matrix := make([][]int, 7)
	for dow := 0; dow < 7; dow++ {
		matrix[dow] = make([]int, len(weeks))
		for wi := range weeks {
			matrix[dow][wi] = cells[[2]int{wi, dow}]
		}
	}
	return Spec{
		ID:     ChartCalendarHeatmap,
		Type:   TypeCalendar,
		Title:  "Calendar Heatmap",
		Scale:  ScaleCalendar,
		XAxis:  &Axis{Title: "ISO Week", Labels: weeks},
		YAxis:  &Axis{Title: "Weekday", Labels: []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}},
		Matrix: matrix,
	}
}

func weekdayMonday(t time.Time) int {
	// time.Weekday has Sunday = 0; the calendar grid wants Monday = 0.
	return (int(t.Weekday()) + 6) % 7
}
