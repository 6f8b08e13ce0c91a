package enhancement

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// minPriorityScore is exclusive: a source must score above it to be crawled.
const minPriorityScore = 0.3

var (
	// .gov, .edu and .org hosts, including country second levels such as
	// .gov.uk or .edu.au.
	institutionalHost = regexp.MustCompile(`\.(gov|edu|org)(\.[a-z]{2})?$`)

	knownPlatforms    = []string{"wikipedia", "arxiv", "ieee", "acm"}
	depthKeywords     = []string{"report", "study", "research", "analysis", "technical"}
	knownCompanyHosts = []string{"google", "microsoft", "amazon", "tesla", "nvidia"}
)

// Score rates how valuable a source is likely to be when crawled in full.
// Each rule contributes at most once and the total is capped at 1.0.
func Score(src Source) float64 {
	rawURL := strings.ToLower(src.URL)
	title := strings.ToLower(src.Title)

	score := 0.0
	if institutionalHost.MatchString(hostOf(rawURL)) {
		score += 0.4
	}
	if containsAny(rawURL, knownPlatforms) {
		score += 0.3
	}
	if containsAny(title, depthKeywords) {
		score += 0.2
	}
	if containsAny(rawURL, knownCompanyHosts) {
		score += 0.2
	}
	score += 0.1

	if score > 1.0 {
		return 1.0
	}
	return score
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	// Scheme-less input ("nasa.gov/missions") parses as a path.
	if u2, err := url.Parse("//" + rawURL); err == nil {
		return u2.Hostname()
	}
	return ""
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// rank scores every source, orders them by descending score (first seen
// wins ties), keeps those above minPriorityScore and caps the count for typ.
func rank(sources []Source, typ Type, score func(Source) float64) []PriorityURL {
	type scored struct {
		src   Source
		score float64
	}
	all := make([]scored, 0, len(sources))
	for _, s := range sources {
		all = append(all, scored{src: s, score: score(s)})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })

	limit := typ.MaxURLs()
	out := make([]PriorityURL, 0, limit)
	for _, s := range all {
		if len(out) == limit {
			break
		}
		if s.score <= minPriorityScore {
			continue
		}
		out = append(out, PriorityURL{
			Title:         s.src.Title,
			URL:           s.src.URL,
			PriorityScore: s.score,
			Reasoning:     fmt.Sprintf("Score: %.2f", s.score),
		})
	}
	return out
}
