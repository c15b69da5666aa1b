package record

// NextNewsID returns the id the next appended news item must carry: one more
// than the largest existing id, or 1 when the record has no news.
func (r *Record) NextNewsID() int {
	maxID := 0
	for _, n := range r.News {
		if n.ID > maxID {
			maxID = n.ID
		}
	}
	return maxID + 1
}

// Enrich appends a news item with the given text and icon to r and returns r.
// Existing items are never touched.
func Enrich(r *Record, text, icon string) *Record {
	r.News = append(r.News, NewsItem{
		ID:          r.NextNewsID(),
		Icon:        icon,
		Description: text,
	})
	return r
}
