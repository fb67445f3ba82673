package tweet

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Page selects a window of tweets ordered by creation time, newest first
// unless Ascending is set.
type Page struct {
	Number    int
	Limit     int
	Ascending bool
}

// Normalize clamps a page request to sane bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p Page) offset() int {
	return (p.Number - 1) * p.Limit
}

func (p Page) orderClause() string {
	if p.Ascending {
		return "created_at asc, id asc"
	}
	return "created_at desc, id desc"
}

// TweetPage is one page of an author's tweets.
type TweetPage struct {
	Tweets      []Tweet `json:"tweets"`
	CurrentPage int     `json:"currentPage"`
	Limit       int     `json:"limit"`
	TotalDocs   int64   `json:"totalDocs"`
	TotalPages  int     `json:"totalPages"`
	NextPage    *int    `json:"nextPage"`
}

func newTweetPage(tweets []Tweet, total int64, page Page) *TweetPage {
	totalPages := int((total + int64(page.Limit) - 1) / int64(page.Limit))
	out := &TweetPage{
		Tweets:      tweets,
		CurrentPage: page.Number,
		Limit:       page.Limit,
		TotalDocs:   total,
		TotalPages:  totalPages,
	}
	if out.Tweets == nil {
		out.Tweets = []Tweet{}
	}
	if page.Number < totalPages {
		next := page.Number + 1
		out.NextPage = &next
	}
	return out
}
