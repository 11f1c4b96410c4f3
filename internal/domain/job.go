package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"time"
)

// JobRecord is one listing extracted from the target page. Extra holds
// non-essential scraped text (pay rate, "hired recently" blurbs); ID is
// never derived from it.
type JobRecord struct {
	ID       string
	Title    string
	Company  string
	URL      string
	PostedAt *time.Time
	Extra    map[string]string
}

// DeriveID computes a stable identifier from the record's stable fields.
// Volatile text (pay, time-since-posted) must not feed this, or every run
// would see every job as new.
func DeriveID(title, company, rawURL string) string {
	return HashString("url:" + CanonicalURL(rawURL) +
		"|title:" + strings.TrimSpace(title) +
		"|company:" + strings.TrimSpace(company))
}

func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// CanonicalURL lowercases scheme/host, drops fragments and tracking params,
// and sorts the remaining query so the same listing always hashes the same.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" ||
			lk == "mkt_tok" {
			q.Del(k)
		}
	}
	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// SeenSet is the set of job IDs already notified.
type SeenSet map[string]struct{}

func NewSeenSet(ids ...string) SeenSet {
	s := make(SeenSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s SeenSet) Add(id string) { s[id] = struct{}{} }

func (s SeenSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s SeenSet) Len() int { return len(s) }

func (s SeenSet) Clone() SeenSet {
	out := make(SeenSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// SortedIDs returns the ids in lexical order. The state file lives under
// version control, so writes must be deterministic.
func (s SeenSet) SortedIDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
