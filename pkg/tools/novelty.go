package tools

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/agentforge/hypothesis-planner/pkg/domain"
)

// noveltyTokenRe selects the content words a hypothesis and an abstract
// are compared on: word characters, length four or more.
var noveltyTokenRe = regexp.MustCompile(`\b\w{4,}\b`)

const maxPapersCompared = 10

// Novelty scores a hypothesis statement against retrieved papers by
// keyword overlap. A high overlap with existing abstracts means low
// novelty. With no papers to compare against the score defaults to 7.
func Novelty(statement string, papers []domain.Paper) domain.NoveltyScore {
	hypTokens := tokenSet(statement)
	if len(papers) == 0 || len(hypTokens) == 0 {
		return domain.NoveltyScore{
			Score:  7,
			Method: "default",
			Reason: "no papers available for comparison",
		}
	}

	if len(papers) > maxPapersCompared {
		papers = papers[:maxPapersCompared]
	}

	total := 0.0
	for _, p := range papers {
		paperTokens := tokenSet(p.Title + " " + p.Abstract)
		shared := 0
		for t := range hypTokens {
			if paperTokens[t] {
				shared++
			}
		}
		total += float64(shared) / float64(len(hypTokens))
	}
	avg := total / float64(len(papers))

	score := int(math.Round(10 * (1 - avg)))
	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}

	return domain.NoveltyScore{
		Score:          score,
		Method:         "keyword_overlap",
		AvgOverlap:     avg,
		PapersCompared: len(papers),
		Reason:         fmt.Sprintf("average overlap %.2f across %d papers", avg, len(papers)),
	}
}

func tokenSet(s string) map[string]bool {
	tokens := noveltyTokenRe.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}
