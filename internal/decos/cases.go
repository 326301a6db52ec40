package decos

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Amsterdam/mijn-decos-join-api/internal/zaken"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/domain"
)

// folderCodes are the field codes requested for every folder: the base fields
// plus the union of what the case types read.
var folderCodes = []string{
	"title", "mark", "text45", "subject1", "company",
	"bol7", "bol8", "bol9", "bol10", "bol11",
	"date1", "date2", "date5", "date6", "date7", "date8", "dfunction", "document_date",
	"num3", "num6", "num14", "num15",
	"text6", "text7", "text8", "text9", "text10", "text11", "text12", "text13",
	"text14", "text15", "text17", "text18", "text19", "text20", "text21", "text22",
	"text25", "text49", "processed", "sequence",
}

var folderFields = strings.Join(folderCodes, ",")

const searchTake = 50

type searchFilter struct {
	FilterOperation int    `json:"FilterOperation"`
	FilterValue     string `json:"FilterValue"`
	FilterOperator  string `json:"FilterOperator"`
}

type searchQuery struct {
	BookKey                          string                    `json:"bookKey"`
	OrderBy                          string                    `json:"orderBy"`
	Skip                             int                       `json:"skip"`
	Take                             int                       `json:"take"`
	SearchInHierarchyPath            bool                      `json:"searchInHierarchyPath"`
	SearchInPendingItemContainerKeys bool                      `json:"searchInPendingItemContainerKeys"`
	FilterFields                     map[string][]searchFilter `json:"filterFields"`
}

type searchResult struct {
	ItemDataResultSet itemPage `json:"itemDataResultSet"`
}

func newSearchQuery(bookKey, externalID string) searchQuery {
	return searchQuery{
		BookKey: bookKey,
		OrderBy: "sequence",
		Take:    searchTake,
		FilterFields: map[string][]searchFilter{
			"num1": {{FilterOperation: 1, FilterValue: externalID, FilterOperator: "="}},
		},
	}
}

// ResolveUserKeys searches every address book configured for the profile type
// and returns the matching keys in book order, then match order. Keys found in
// more than one book are kept as often as they are found.
func (c *Client) ResolveUserKeys(ctx context.Context, profile domain.Profile) ([]string, error) {
	books := c.books[profile.Type]
	if len(books) == 0 {
		return []string{}, nil
	}

	perBook := make([][]string, len(books))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.fanout)
	for i, book := range books {
		g.Go(func() error {
			var res searchResult
			query := url.Values{"properties": {"false"}}
			if err := c.postJSON(gctx, "search_books", "search/books", query, newSearchQuery(book, profile.ID), &res); err != nil {
				return fmt.Errorf("search address book %d: %w", i, err)
			}
			keys := make([]string, 0, len(res.ItemDataResultSet.Content))
			if res.ItemDataResultSet.Count > 0 {
				for _, it := range res.ItemDataResultSet.Content {
					keys = append(keys, it.Key)
				}
			}
			perBook[i] = keys
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var keys []string
	for _, k := range perBook {
		keys = append(keys, k...)
	}
	return keys, nil
}

// Folders returns every folder under one user key.
func (c *Client) Folders(ctx context.Context, userKey string) ([]zaken.RawRecord, error) {
	items, err := c.allPages(ctx, "folders", "items/"+url.PathEscape(userKey)+"/folders", url.Values{"select": {folderFields}})
	if err != nil {
		return nil, err
	}
	records := make([]zaken.RawRecord, len(items))
	for i, it := range items {
		records[i] = zaken.RawRecord{Key: it.Key, Fields: it.Fields}
	}
	return records, nil
}

// FetchCases resolves the requester's keys, fetches all their folders and
// transforms them into zaken. A failure for any key fails the whole listing.
func (c *Client) FetchCases(ctx context.Context, profile domain.Profile) ([]zaken.Zaak, error) {
	keys, err := c.ResolveUserKeys(ctx, profile)
	if err != nil {
		return nil, err
	}

	perKey := make([][]zaken.RawRecord, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.fanout)
	for i, key := range keys {
		g.Go(func() error {
			records, err := c.Folders(gctx, key)
			if err != nil {
				return err
			}
			perKey[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []zaken.RawRecord
	for _, r := range perKey {
		records = append(records, r...)
	}
	return c.transformer.Transform(ctx, records, profile.ID, c)
}

// allPages fetches a listing page by page. The first page reports the total;
// later pages are requested with an explicit skip until ceil(count/page)
// pages were read.
func (c *Client) allPages(ctx context.Context, op, path string, query url.Values) ([]item, error) {
	query.Set("top", strconv.Itoa(c.pageSize))

	var first itemPage
	if err := c.getJSON(ctx, op, path, query, &first); err != nil {
		return nil, err
	}
	items := first.Content
	pages := 1

	end := (first.Count + c.pageSize - 1) / c.pageSize * c.pageSize
	for offset := c.pageSize; offset < end; offset += c.pageSize {
		q := cloneValues(query)
		q.Set("skip", strconv.Itoa(offset))

		var page itemPage
		if err := c.getJSON(ctx, op, path, q, &page); err != nil {
			return nil, err
		}
		items = append(items, page.Content...)
		pages++
	}
	c.metrics.ObservePages(pages)
	return items, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
