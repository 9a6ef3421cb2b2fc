package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"festivalpulse/internal/charts"
	"festivalpulse/internal/config"
	"festivalpulse/internal/dataprocessing"
	"festivalpulse/internal/infrastructure"
	"festivalpulse/internal/session"
	"festivalpulse/pkg/contracts/domain"
)

// DashboardService coordinates the dataset pipeline: parse, validate,
// filter, aggregate and map to chart specs. Datasets are held per
// session in the store.
type DashboardService struct {
	config  *config.Config
	store   *session.Store
	logger  *slog.Logger
	metrics *infrastructure.DashboardMetrics
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(cfg *config.Config, store *session.Store, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		config: cfg,
		store:  store,
		logger: logger,
	}
}

// SetMetrics wires dashboard metrics into the service. Optional.
func (s *DashboardService) SetMetrics(m *infrastructure.DashboardMetrics) {
	s.metrics = m
}

// LoadDataset parses and validates an uploaded workbook and stores the
// resulting dataset under the session ID, replacing any previous one.
func (s *DashboardService) LoadDataset(ctx context.Context, sessionID, source string, r io.Reader) (*domain.Dataset, error) {
	start := time.Now()

	table, err := dataprocessing.ParseWorkbook(r, s.logger)
	if err != nil {
		infrastructure.RecordUploadMetrics(ctx, s.metrics, source, 0, time.Since(start), err)
		return nil, err
	}

	if err := dataprocessing.ValidateSchema(table); err != nil {
		infrastructure.RecordUploadMetrics(ctx, s.metrics, source, 0, time.Since(start), err)
		return nil, err
	}

	ds, err := dataprocessing.BuildDataset(table, source, s.logger)
	if err != nil {
		infrastructure.RecordUploadMetrics(ctx, s.metrics, source, 0, time.Since(start), err)
		return nil, err
	}

	s.store.Put(sessionID, ds)
	infrastructure.RecordUploadMetrics(ctx, s.metrics, source, ds.Len(), time.Since(start), nil)

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("session_id", sessionID),
		slog.String("source", source),
		slog.Int("posts", ds.Len()),
		slog.Any("synthetic_columns", ds.SyntheticColumns),
		slog.Duration("duration", time.Since(start)),
	)

	return ds, nil
}

// Dataset returns the dataset stored for a session
func (s *DashboardService) Dataset(sessionID string) (*domain.Dataset, error) {
	ds, ok := s.store.Get(sessionID)
	if !ok {
		return nil, ErrNoDataset
	}
	return ds, nil
}

// Filtered returns the session dataset restricted to the selection
func (s *DashboardService) Filtered(sessionID string, sel domain.FilterSelection) (*domain.Dataset, error) {
	ds, err := s.Dataset(sessionID)
	if err != nil {
		return nil, err
	}
	return dataprocessing.Filter(ds, sel), nil
}

// FilterOptions holds the distinct values available for filtering
type FilterOptions struct {
	Festivals  []string `json:"festivals"`
	Sentiments []string `json:"sentiments"`
}

// Filters returns the distinct festivals and sentiments of the full
// (unfiltered) session dataset, in first-seen order.
func (s *DashboardService) Filters(sessionID string) (*FilterOptions, error) {
	ds, err := s.Dataset(sessionID)
	if err != nil {
		return nil, err
	}
	return &FilterOptions{
		Festivals:  ds.Festivals(),
		Sentiments: ds.Sentiments(),
	}, nil
}

// Summary computes headline KPIs over the filtered dataset
func (s *DashboardService) Summary(sessionID string, sel domain.FilterSelection) (*dataprocessing.Summary, error) {
	filtered, err := s.Filtered(sessionID, sel)
	if err != nil {
		return nil, err
	}
	summary := dataprocessing.Summarize(filtered)
	return &summary, nil
}

// RowsPage holds one page of dataset rows
type RowsPage struct {
	Posts   []domain.Post `json:"posts"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

// Rows returns one page of the filtered dataset, preserving row order
func (s *DashboardService) Rows(sessionID string, sel domain.FilterSelection, page, perPage int) (*RowsPage, error) {
	filtered, err := s.Filtered(sessionID, sel)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 500 {
		perPage = 50
	}

	total := filtered.Len()
	lo := (page - 1) * perPage
	if lo > total {
		lo = total
	}
	hi := lo + perPage
	if hi > total {
		hi = total
	}

	return &RowsPage{
		Posts:   filtered.Posts[lo:hi],
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

// ChartSpecs builds every chart spec for the filtered dataset
func (s *DashboardService) ChartSpecs(ctx context.Context, sessionID string, sel domain.FilterSelection, topN int) ([]charts.Spec, error) {
	filtered, err := s.Filtered(sessionID, sel)
	if err != nil {
		return nil, err
	}

	specs := make([]charts.Spec, 0, len(charts.AllCharts))
	for _, id := range charts.AllCharts {
		specs = append(specs, s.buildChart(ctx, id, filtered, topN))
	}
	return specs, nil
}

// ChartSpec builds a single chart spec for the filtered dataset
func (s *DashboardService) ChartSpec(ctx context.Context, sessionID, chartID string, sel domain.FilterSelection, topN int) (*charts.Spec, error) {
	if !knownChart(chartID) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChart, chartID)
	}

	filtered, err := s.Filtered(sessionID, sel)
	if err != nil {
		return nil, err
	}

	spec := s.buildChart(ctx, chartID, filtered, topN)
	return &spec, nil
}

func knownChart(id string) bool {
	for _, known := range charts.AllCharts {
		if known == id {
			return true
		}
	}
	return false
}

func (s *DashboardService) buildChart(ctx context.Context, id string, ds *domain.Dataset, topN int) charts.Spec {
	start := time.Now()
	topN = dataprocessing.ClampTopN(topN)

	var spec charts.Spec
	switch id {
	case charts.ChartEmojiFrequency:
		spec = charts.EmojiFrequencyBar(dataprocessing.EmojiFrequency(ds, topN))
	case charts.ChartSentimentSplit:
		spec = charts.SentimentPie(dataprocessing.SentimentDistribution(ds))
	case charts.ChartEmotionTreemap:
		spec = charts.EmotionTreemap(dataprocessing.EmotionEmojiTree(ds))
	case charts.ChartTweetTrends:
		spec = charts.TweetTrendsLine(dataprocessing.TimeSeries(ds))
	case charts.ChartEmojiSentiment:
		spec = charts.EmojiSentimentBar(dataprocessing.EmojiSentimentCrossTab(ds, topN))
	case charts.ChartLengthViolin:
		spec = charts.LengthViolin(dataprocessing.TweetLengthBySentiment(ds))
	case charts.ChartEmojiScatter:
		spec = charts.EmojiScatter(dataprocessing.EmojiActivityOverTime(ds, topN))
	case charts.ChartLengthRadar:
		spec = charts.LengthRadar(dataprocessing.TweetLengthBySentiment(ds))
	case charts.ChartSentimentArea:
		spec = charts.SentimentArea(dataprocessing.SentimentOverTime(ds))
	case charts.ChartPositiveGauge:
		spec = charts.PositiveGauge(dataprocessing.PositiveRatio(ds), ds.Len())
	case charts.ChartFestivalSankey:
		spec = charts.FestivalSankey(dataprocessing.FestivalFlows(ds, topN))
	case charts.ChartCooccurrence:
		spec = charts.CooccurrenceHeatmap(dataprocessing.EmojiCooccurrence(ds, topN))
	case charts.ChartEmojiBubble:
		spec = charts.EmojiBubble(dataprocessing.EmojiActivityOverTime(ds, topN))
	case charts.ChartCalendarHeatmap:
		spec = charts.CalendarHeatmap(dataprocessing.TimeSeries(ds))
	}

	infrastructure.RecordChartMetrics(ctx, s.metrics, id, time.Since(start))
	return spec
}

// ExportCSV writes the filtered dataset as CSV
func (s *DashboardService) ExportCSV(w io.Writer, sessionID string, sel domain.FilterSelection) error {
	filtered, err := s.Filtered(sessionID, sel)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{
		domain.ColumnTweetID,
		domain.ColumnAuthorID,
		domain.ColumnDate,
		domain.ColumnFestival,
		domain.ColumnSentiment,
		domain.ColumnEmoji,
		domain.ColumnEmotion,
		domain.ColumnTweet,
		"Synthetic",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, p := range filtered.Posts {
		record := []string{
			p.PostID,
			p.AuthorID,
			p.Date.UTC().Format("2006-01-02"),
			p.Festival,
			p.Sentiment,
			p.Emoji,
			p.Emotion,
			p.TweetText,
			strconv.FormatBool(p.Synthetic),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
