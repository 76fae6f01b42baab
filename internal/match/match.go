// Package match ranks candidate donors against a blood request. The
// score is an arbitrary ranking weight, not a probability, and ties
// are broken by input order (stable sort).
package match

import (
	"sort"
	"time"

	"github.com/lifelink/blood-donation-api/internal/model"
)

// eligibilityGapDays is the minimum spacing between donations; a donor
// past this gap gets a ranking bonus because they can donate again.
const eligibilityGapDays = 56

// Candidate wraps a donor with the extra signals the score uses.
// DonationsThisYear comes from the fulfilled-appointment aggregation;
// Verified is true when a verified user account shares the donor's
// email address.
type Candidate struct {
	Donor             model.Donor
	DonationsThisYear uint32
	Verified          bool
}

// Match is a ranked candidate.
type Match struct {
	Candidate
	Score int
}

// FindBestDonorMatch filters candidates to an exact blood-group match
// with the request, scores them, and returns the top three in
// descending score order. No cross-type compatibility table is
// modeled. Returns an empty slice when nothing matches.
func FindBestDonorMatch(req model.Request, candidates []Candidate, now time.Time) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if c.Donor.BloodGroup != req.BloodGroupNeeded {
			continue
		}
		matches = append(matches, Match{Candidate: c, Score: score(c, now)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > 3 {
		matches = matches[:3]
	}
	return matches
}

func score(c Candidate, now time.Time) int {
	s := int(c.Donor.Donations) * 10
	if c.Donor.LastDonationDate != nil {
		days := now.Sub(*c.Donor.LastDonationDate).Hours() / 24
		if days >= eligibilityGapDays {
			s += 50
		}
	}
	s += int(c.DonationsThisYear) * 5
	if c.Verified {
		s += 20
	}
	return s
}
