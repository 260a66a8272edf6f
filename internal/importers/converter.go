package importers

import (
	"errors"
	"fmt"
	"time"

	"github.com/mrlokans/pagekeeper/internal/docid"
	"github.com/mrlokans/pagekeeper/internal/entities"
	"github.com/mrlokans/pagekeeper/internal/history"
)

// historyNoncePrefix marks ids derived from the provider's numbering.
const historyNoncePrefix = "history-"

// ErrLengthMismatch is returned when visits are not index-aligned with items.
var ErrLengthMismatch = errors.New("visits not aligned with items")

// Conversion is the output of one Convert call.
type Conversion struct {
	Pages   []entities.PageDoc
	Visits  []entities.VisitDoc
	Imports []entities.ImportDoc
}

// Len returns the total number of documents.
func (c Conversion) Len() int {
	return len(c.Pages) + len(c.Visits) + len(c.Imports)
}

// Converter maps history items and visits to documents.
type Converter struct {
	// Clock stamps imported documents and import record ids.
	Clock func() time.Time
	// Nonce makes import record ids unique.
	Nonce func() string
}

func NewConverter() *Converter {
	return &Converter{Clock: time.Now, Nonce: docid.NewNonce}
}

// visitDraft carries the provider's referrer id until it is resolved.
type visitDraft struct {
	doc      entities.VisitDoc
	referrer string
}

// Convert builds one page and one pending import record per item, and one
// visit per distinct provider visit id.
func (c *Converter) Convert(items []history.Item, visitsByItem [][]history.Visit) (Conversion, error) {
	if len(items) != len(visitsByItem) {
		return Conversion{}, fmt.Errorf("%w: %d items, %d visit lists", ErrLengthMismatch, len(items), len(visitsByItem))
	}

	now := c.Clock().UnixMilli()
	out := Conversion{
		Pages:   make([]entities.PageDoc, 0, len(items)),
		Imports: make([]entities.ImportDoc, 0, len(items)),
	}

	var drafts []visitDraft
	visitIDs := make(map[string]string)

	for i, item := range items {
		page := entities.PageDoc{
			ID:         docid.Make(docid.KindPage, item.LastVisitTime, historyNoncePrefix+item.ID),
			URL:        item.URL,
			Title:      item.Title,
			ImportedAt: now,
		}
		out.Pages = append(out.Pages, page)

		for _, v := range visitsByItem[i] {
			if _, dup := visitIDs[v.VisitID]; dup {
				continue
			}
			id := docid.Make(docid.KindVisit, v.VisitTime, historyNoncePrefix+v.VisitID)
			visitIDs[v.VisitID] = id

			draft := visitDraft{doc: entities.VisitDoc{
				ID:         id,
				VisitStart: v.VisitTime,
				URL:        page.URL,
				PageID:     page.ID,
				ImportedAt: now,
			}}
			if v.HasReferrer() {
				draft.referrer = v.ReferringVisitID
			}
			drafts = append(drafts, draft)
		}

		out.Imports = append(out.Imports, entities.ImportDoc{
			ID:     docid.Make(docid.KindImport, now, c.Nonce()),
			Status: entities.ImportStatusPending,
			Type:   entities.ImportTypeHistory,
			URL:    page.URL,
			PageID: page.ID,
		})
	}

	// Second pass: every visit of the batch has an id now.
	out.Visits = make([]entities.VisitDoc, 0, len(drafts))
	for _, d := range drafts {
		if d.referrer != "" {
			if ref, ok := visitIDs[d.referrer]; ok && ref != d.doc.ID {
				d.doc.ReferringVisitID = &ref
			}
		}
		out.Visits = append(out.Visits, d.doc)
	}

	return out, nil
}
