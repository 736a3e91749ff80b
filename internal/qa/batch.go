package qa

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ingestParallelism caps concurrent fetches during batch ingestion so
// a large batch cannot exhaust sockets or hammer the embedding API.
const ingestParallelism = 4

// IngestURLs ingests several URLs, fetching concurrently. Results are
// returned in input order. The batch fails as a whole on the first
// error; sessions already created by other goroutines remain valid.
func (s *Service) IngestURLs(ctx context.Context, rawURLs []string) ([]Session, error) {
	results := make([]Session, len(rawURLs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ingestParallelism)

	for i, rawURL := range rawURLs {
		g.Go(func() error {
			sess, err := s.IngestURL(ctx, rawURL)
			if err != nil {
				return err
			}
			results[i] = sess
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
