package decos

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Amsterdam/mijn-decos-join-api/internal/zaken"
)

const documentFields = "subject1,sequence,mark,text39,text40,text41,itemtype_key"

// Document is the client-facing metadata of one downloadable document.
type Document struct {
	Title string  `json:"title"`
	ID    *string `json:"id"`
	URL   string  `json:"url"`

	sequence int
}

// Blob is the raw content of a document.
type Blob struct {
	ContentType string
	Data        []byte
}

// publishable reports whether a document item may be shown to the requester:
// a final document, published publicly or with limited publicity, that is
// not marked not-applicable.
func publishable(fields map[string]any) bool {
	kind, _ := zaken.ToStringOrEmpty(fields["itemtype_key"])
	if !zaken.EqualFold(kind.(string), "document") {
		return false
	}
	status, _ := zaken.ToStringOrEmpty(fields["text39"])
	scope, _ := zaken.ToStringOrEmpty(fields["text40"])
	title, _ := zaken.ToStringOrEmpty(fields["text41"])
	return zaken.EqualFold(status.(string), "definitief") &&
		zaken.InFold(scope.(string), "openbaar", "beperkt openbaar") &&
		!zaken.EqualFold(title.(string), "nvt")
}

// Documents lists the publishable PDF documents of one case. Download URLs are
// sealed for scope.
func (c *Client) Documents(ctx context.Context, caseKey, scope string) ([]Document, error) {
	items, err := c.allPages(ctx, "documents", "items/"+url.PathEscape(caseKey)+"/documents", url.Values{"select": {documentFields}})
	if err != nil {
		return nil, err
	}

	var candidates []item
	for _, it := range items {
		if publishable(it.Fields) {
			candidates = append(candidates, it)
		}
	}

	blobKeys := make([]string, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.fanout)
	for i, it := range candidates {
		g.Go(func() error {
			key, err := c.pdfBlobKey(gctx, it.Key)
			if err != nil {
				return err
			}
			blobKeys[i] = key
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(candidates))
	for i, it := range candidates {
		if blobKeys[i] == "" {
			continue
		}
		token, err := c.tokens.Encrypt(blobKeys[i], scope)
		if err != nil {
			return nil, fmt.Errorf("seal document token: %w", err)
		}
		doc := Document{URL: c.docPrefix + token}
		title, _ := zaken.ToStringOrEmpty(it.Fields["text41"])
		doc.Title = title.(string)
		if mark, _ := zaken.ToString(it.Fields["mark"]); mark != nil {
			s := mark.(string)
			doc.ID = &s
		}
		if seq, err := zaken.ToInt(it.Fields["sequence"]); err == nil && seq != nil {
			doc.sequence = seq.(int)
		}
		docs = append(docs, doc)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].sequence < docs[j].sequence
	})
	return docs, nil
}

type blobList struct {
	Content []item `json:"content"`
}

// pdfBlobKey returns the key of the newest PDF blob of a document, or "" when
// the document has none.
func (c *Client) pdfBlobKey(ctx context.Context, documentKey string) (string, error) {
	var res blobList
	if err := c.getJSON(ctx, "document_blobs", "items/"+url.PathEscape(documentKey)+"/blob", url.Values{"select": {"bol10"}}, &res); err != nil {
		return "", err
	}
	for i := len(res.Content) - 1; i >= 0; i-- {
		if !zaken.IsAbsent(res.Content[i].Fields["bol10"]) {
			return res.Content[i].Key, nil
		}
	}
	return "", nil
}

// Blob downloads the raw content of a document blob.
func (c *Client) Blob(ctx context.Context, blobKey string) (*Blob, error) {
	resp, err := c.call(ctx, "blob", http.MethodGet, "items/"+url.PathEscape(blobKey)+"/content", nil, nil, acceptBlob)
	if err != nil {
		return nil, err
	}
	return &Blob{ContentType: resp.contentType, Data: resp.body}, nil
}
