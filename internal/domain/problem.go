package domain

import "fmt"

// ProblemBaseURL is the canonical prefix for problem links
const ProblemBaseURL = "https://codeforces.com/problemset/problem"

// NonStandardTag marks problems with special judging rules
const NonStandardTag = "*special"

// Problem is a judge problem from the catalog. Rating is zero when unrated.
type Problem struct {
	ContestID int      `json:"contest_id"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Rating    int      `json:"rating,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Key identifies the problem within its contest, e.g. "1742A"
func (p Problem) Key() string {
	return fmt.Sprintf("%d%s", p.ContestID, p.Index)
}

// URL is the canonical reference link for the problem
func (p Problem) URL() string {
	return fmt.Sprintf("%s/%d/%s", ProblemBaseURL, p.ContestID, p.Index)
}

// IsStandard reports whether the problem is rated and uses normal judging
func (p Problem) IsStandard() bool {
	if p.Rating <= 0 {
		return false
	}
	for _, tag := range p.Tags {
		if tag == NonStandardTag {
			return false
		}
	}
	return true
}
