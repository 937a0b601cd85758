package history

import (
	"time"

	"github.com/JakeFAU/linkdiff/internal/links"
)

// Record is one persisted extraction result, keyed implicitly by BaseURL.
type Record struct {
	BaseURL    string        `json:"baseUrl"`
	AllLinks   []string      `json:"allLinks"`
	NewLinks   []string      `json:"newLinks"`
	Timestamp  time.Time     `json:"timestamp"`
	TotalCount int           `json:"totalCount"`
	NewCount   int           `json:"newCount"`
	Options    links.Options `json:"options"`
}

// NewRecord builds a Record and derives its counts from the link slices.
func NewRecord(baseURL string, all, fresh []string, at time.Time, opts links.Options) Record {
	if all == nil {
		all = []string{}
	}
	if fresh == nil {
		fresh = []string{}
	}
	return Record{
		BaseURL:    baseURL,
		AllLinks:   all,
		NewLinks:   fresh,
		Timestamp:  at,
		TotalCount: len(all),
		NewCount:   len(fresh),
		Options:    opts,
	}
}
