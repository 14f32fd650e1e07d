// Package sheets loads the remote spreadsheet tabs that hold the station
// roster and the per-date overlay content.
package sheets

import (
	"context"
	"sync"

	"aircheck/internal/tabular"

	"github.com/sirupsen/logrus"
)

// Loader fetches a fixed set of named tabs and parses each into records
type Loader struct {
	source Source
	logger *logrus.Logger
}

// NewLoader creates a loader over the given source
func NewLoader(source Source, logger *logrus.Logger) *Loader {
	return &Loader{
		source: source,
		logger: logger,
	}
}

type fetchResult struct {
	name string
	text string
	err  error
}

// LoadAll fetches every named tab concurrently and waits for all of them
// before returning. Any single failure fails the whole load; there is no
// partial-result mode and no retry.
func (l *Loader) LoadAll(ctx context.Context, names []string) (map[string]tabular.Table, error) {
	var wg sync.WaitGroup
	results := make(chan fetchResult, len(names))

	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			text, err := l.source.FetchTab(ctx, name)
			results <- fetchResult{name: name, text: text, err: err}
		}(name)
	}

	// Join point: nothing downstream runs until every fetch has finished.
	wg.Wait()
	close(results)

	tables := make(map[string]tabular.Table, len(names))
	var firstErr error
	for res := range results {
		if res.err != nil {
			l.logger.WithError(res.err).WithField("tab", res.name).Error("Failed to load tab")
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		table := tabular.Parse(res.text)
		l.logger.WithFields(logrus.Fields{
			"tab":     res.name,
			"records": len(table.Records),
		}).Debug("Loaded tab")
		tables[res.name] = table
	}

	if firstErr != nil {
		return nil, firstErr
	}

	return tables, nil
}
