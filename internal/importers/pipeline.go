package importers

import (
	"context"
	"fmt"
	"time"

	"github.com/mrlokans/pagekeeper/internal/database/documents"
	"github.com/mrlokans/pagekeeper/internal/entities"
	"github.com/mrlokans/pagekeeper/internal/history"
	"github.com/mrlokans/pagekeeper/internal/logger"
)

// ItemSource supplies the worthy history items of a window and their visits.
type ItemSource interface {
	FetchWorthyItems(ctx context.Context, start, end int64) ([]history.Item, error)
	FetchVisits(ctx context.Context, items []history.Item) ([][]history.Visit, error)
}

// DocumentWriter persists a conversion. Existing ids must be skipped, not
// overwritten.
type DocumentWriter interface {
	BulkWrite(ctx context.Context, pages []entities.PageDoc, visits []entities.VisitDoc, imports []entities.ImportDoc) (documents.WriteResult, error)
}

// Result describes one harvest.
type Result struct {
	Items   int                   `json:"items"`
	Written documents.WriteResult `json:"written"`
}

// Pipeline handles the harvest workflow:
// search → filter → fetch visits → convert → bulk write.
type Pipeline struct {
	source    ItemSource
	converter *Converter
	writer    DocumentWriter
	log       *logger.Logger
}

// NewPipeline creates a harvest pipeline. A nil converter uses NewConverter.
func NewPipeline(source ItemSource, converter *Converter, writer DocumentWriter, log *logger.Logger) *Pipeline {
	if converter == nil {
		converter = NewConverter()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{source: source, converter: converter, writer: writer, log: log.Component("harvest")}
}

// Convert reads [start, end) from the source and converts it without writing.
func (p *Pipeline) Convert(ctx context.Context, start, end int64) (Conversion, error) {
	items, err := p.source.FetchWorthyItems(ctx, start, end)
	if err != nil {
		return Conversion{}, err
	}
	if len(items) == 0 {
		return Conversion{}, nil
	}

	visits, err := p.source.FetchVisits(ctx, items)
	if err != nil {
		return Conversion{}, err
	}

	return p.converter.Convert(items, visits)
}

// Harvest converts [start, end) and writes the result in a single bulk write.
func (p *Pipeline) Harvest(ctx context.Context, start, end int64) (Result, error) {
	began := time.Now()

	conv, err := p.Convert(ctx, start, end)
	if err != nil {
		return Result{}, fmt.Errorf("convert history: %w", err)
	}

	res := Result{Items: len(conv.Pages)}
	if conv.Len() == 0 {
		return res, nil
	}

	res.Written, err = p.writer.BulkWrite(ctx, conv.Pages, conv.Visits, conv.Imports)
	if err != nil {
		return Result{}, fmt.Errorf("write documents: %w", err)
	}

	p.log.WithFields(logger.Fields{
		"start":                start,
		"end":                  end,
		"pages":                res.Written.Pages,
		"visits":               res.Written.Visits,
		"imports":              res.Written.Imports,
		"skipped":              res.Written.Skipped,
		logger.FieldDurationMs: time.Since(began).Milliseconds(),
	}).Info("History harvested")

	return res, nil
}
