package provider

import "context"

// Paginator walks the cursor-paginated events listing: fetch a page, yield its
// results, follow the next link until it is null.
type Paginator struct {
	client    *Client
	changedAt string

	page *EventsPage
	idx  int
}

// NewPaginator creates a paginator over events changed at or after changedAt.
func NewPaginator(client *Client, changedAt string) *Paginator {
	return &Paginator{
		client:    client,
		changedAt: changedAt,
	}
}

// Next returns the next event, fetching pages on demand. It returns
// (nil, nil) when the listing is exhausted.
func (p *Paginator) Next(ctx context.Context) (*EventData, error) {
	for {
		if p.page != nil && p.idx < len(p.page.Results) {
			event := p.page.Results[p.idx]
			p.idx++
			return &event, nil
		}

		var page *EventsPage
		var err error
		switch {
		case p.page == nil:
			page, err = p.client.Events(ctx, p.changedAt, "")
		case p.page.Next != nil:
			page, err = p.client.EventsByURL(ctx, *p.page.Next)
		default:
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		p.page = page
		p.idx = 0
	}
}
