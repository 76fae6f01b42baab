// Package screening implements the rule-based donor eligibility check
// behind the health questionnaire. It is a decision table, not a
// scored model: an ordered set of rule checks, each appending to the
// risks and recommendations and possibly escalating the overall risk.
// Escalation is monotonic: MEDIUM can be raised to HIGH but a later
// rule never lowers the level.
package screening

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Risk levels, in escalation order.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// Donation limits and thresholds used by the rules.
const (
	minAge           = 18
	maxAge           = 65
	minWeightKg      = 50.0
	advisoryWeightKg = 55.0 // advisory minimum for female donors
	donationGapDays  = 56
	maxPerYearMale   = 6
	maxPerYearFemale = 4
)

// Answers carries the questionnaire responses. The boolean fields
// correspond to the gender-conditioned question set; irrelevant ones
// are ignored for the respondent's gender.
type Answers struct {
	Gender            string
	Age               int
	WeightKg          float64
	DonationsThisYear int
	LastDonationDate  *time.Time

	// Female-specific questions.
	PregnantOrRecentBirth bool
	MenstrualCycleNow     bool
	LowIronHistory        bool

	// Male-specific questions.
	ProstateIssues         bool
	TestosteroneSupplement bool

	// Asked when no gender-specific set applies.
	GeneralHealthConcern string
}

// Assessment is the outcome of a screening run. Eligible is true if
// and only if the overall risk stayed LOW.
type Assessment struct {
	OverallRisk     string
	Risks           []string
	Recommendations []string
	Eligible        bool
	Gender          string
}

// Assess runs the decision table against the wall clock.
func Assess(a Answers) Assessment {
	return AssessAt(time.Now().UTC(), a)
}

// AssessAt runs the decision table at the given moment. The moment
// only matters for the days-since-last-donation rule.
func AssessAt(now time.Time, a Answers) Assessment {
	gender := strings.ToLower(strings.TrimSpace(a.Gender))
	out := Assessment{OverallRisk: RiskLow, Gender: gender}

	if a.Age < minAge || a.Age > maxAge {
		out.flag(RiskHigh, fmt.Sprintf("Age outside donation range (%d-%d)", minAge, maxAge))
		out.recommend("Please verify your age meets donation requirements")
	}

	if a.WeightKg < minWeightKg {
		out.flag(RiskHigh, fmt.Sprintf("Weight below minimum requirement (%.0fkg)", minWeightKg))
		out.recommend(fmt.Sprintf("Please ensure you meet the minimum weight requirement of %.0fkg", minWeightKg))
	} else if gender == "female" && a.WeightKg < advisoryWeightKg {
		out.flag(RiskMedium, fmt.Sprintf("Female donors should ideally weigh at least %.0fkg for optimal safety", advisoryWeightKg))
		out.recommend(fmt.Sprintf("Female donors should maintain a healthy weight of at least %.0fkg for optimal safety", advisoryWeightKg))
	}

	maxPerYear := maxPerYearFemale
	if gender == "male" {
		maxPerYear = maxPerYearMale
	}
	if a.DonationsThisYear > maxPerYear {
		out.flag(RiskMedium, fmt.Sprintf("High donation frequency this year (max %d per year)", maxPerYear))
		out.recommend(fmt.Sprintf("Consider limiting donations to %d times per year for your health", maxPerYear))
	}

	if a.LastDonationDate != nil {
		days := now.Sub(*a.LastDonationDate).Hours() / 24
		if days < donationGapDays {
			out.flag(RiskHigh, fmt.Sprintf("Too soon since last donation (%d days ago)", int(math.Ceil(days))))
			out.recommend(fmt.Sprintf("Wait at least %d days between donations", donationGapDays))
		}
	}

	switch gender {
	case "female":
		if a.PregnantOrRecentBirth {
			out.flag(RiskHigh, "Pregnant women or recent mothers may not be eligible to donate")
			out.recommend("Please wait until 6 weeks after childbirth before donating")
		}
		if a.MenstrualCycleNow {
			out.flag(RiskMedium, "Consider donating after your menstrual cycle for optimal iron levels")
		}
		if a.LowIronHistory {
			out.flag(RiskMedium, "History of low iron levels")
			out.recommend("Consider taking iron supplements and eating iron-rich foods before donation")
		}
		out.recommend("Female donors should maintain adequate iron levels through diet or supplements")
	case "male":
		if a.ProstateIssues {
			out.flag(RiskMedium, "Prostate health issues may require medical clearance before donation")
			out.recommend("Please consult with your doctor about blood donation with prostate health issues")
		}
		if a.TestosteroneSupplement {
			out.flag(RiskMedium, "Testosterone supplements may affect blood donation eligibility")
			out.recommend("Please discuss testosterone supplements with medical staff before donation")
		}
		out.recommend(fmt.Sprintf("Male donors can donate up to %d times per year with proper spacing", maxPerYearMale))
	default:
		concern := strings.ToLower(strings.TrimSpace(a.GeneralHealthConcern))
		if concern != "" && concern != "no" && concern != "none" {
			out.flag(RiskMedium, "Please discuss your health concerns with medical staff before donation")
		}
		out.recommend("Please discuss any specific health concerns with medical staff")
	}

	if len(out.Recommendations) == 0 {
		out.recommend("You appear eligible to donate. Please consult with medical staff.")
	}

	out.Eligible = out.OverallRisk == RiskLow
	return out
}

// flag records a risk and escalates the overall level. Escalation is
// one-way: a HIGH never drops back to MEDIUM.
func (a *Assessment) flag(level, risk string) {
	a.Risks = append(a.Risks, risk)
	if rank(level) > rank(a.OverallRisk) {
		a.OverallRisk = level
	}
}

func (a *Assessment) recommend(rec string) {
	a.Recommendations = append(a.Recommendations, rec)
}

func rank(level string) int {
	switch level {
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}
