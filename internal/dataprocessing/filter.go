package dataprocessing

import "festivalpulse/pkg/contracts/domain"

// Filter applies the user's festival/sentiment selection to a dataset,
// producing an order-preserving subsequence. An empty selection returns the
// dataset unchanged. Filter never errors; zero surviving rows is a valid
// result and every aggregate handles it.
func Filter(ds *domain.Dataset, sel domain.FilterSelection) *domain.Dataset {
	if ds == nil {
		return &domain.Dataset{}
	}
	if sel.IsZero() {
		return ds
	}

	out := &domain.Dataset{
		Posts:            make([]domain.Post, 0, len(ds.Posts)),
		LoadedAt:         ds.LoadedAt,
		Source:           ds.Source,
		SyntheticColumns: ds.SyntheticColumns,
	}
	for _, p := range ds.Posts {
		if sel.Matches(p) {
			out.Posts = append(out.Posts, p)
		}
	}
	return out
}
