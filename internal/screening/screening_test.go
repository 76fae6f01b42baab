package screening

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := now.AddDate(0, 0, -n)
	return &t
}

func TestHealthyAdultIsEligible(t *testing.T) {
	out := AssessAt(now, Answers{Gender: "male", Age: 30, WeightKg: 75})

	assert.True(t, out.Eligible)
	assert.Equal(t, RiskLow, out.OverallRisk)
	assert.Empty(t, out.Risks)
	require.NotEmpty(t, out.Recommendations)
}

func TestUnderageIsHighRisk(t *testing.T) {
	out := AssessAt(now, Answers{Gender: "male", Age: 17, WeightKg: 70})

	assert.False(t, out.Eligible)
	assert.Equal(t, RiskHigh, out.OverallRisk)
	require.Len(t, out.Risks, 1)
	assert.Contains(t, out.Risks[0], "Age outside donation range")
}

func TestOverAgeLimitIsHighRisk(t *testing.T) {
	out := AssessAt(now, Answers{Gender: "female", Age: 70, WeightKg: 70})

	assert.False(t, out.Eligible)
	assert.Equal(t, RiskHigh, out.OverallRisk)
}

func TestBoundaryAgesAreAccepted(t *testing.T) {
	for _, age := range []int{18, 65} {
		out := AssessAt(now, Answers{Gender: "male", Age: age, WeightKg: 80})
		assert.True(t, out.Eligible, "age %d should be eligible", age)
	}
}

func TestUnderweightIsHighRisk(t *testing.T) {
	out := AssessAt(now, Answers{Gender: "male", Age: 30, WeightKg: 49})

	assert.False(t, out.Eligible)
	assert.Equal(t, RiskHigh, out.OverallRisk)
}

func TestFemaleAdvisoryWeightIsMediumRisk(t *testing.T) {
	out := AssessAt(now, Answers{Gender: "female", Age: 30, WeightKg: 52})

	assert.False(t, out.Eligible)
	assert.Equal(t, RiskMedium, out.OverallRisk)
}

func TestMaleAtFiftyKilogramsIsEligible(t *testing.T) {
	// The advisory band only applies to female donors.
	out := AssessAt(now, Answers{Gender: "male", Age: 30, WeightKg: 52})

	assert.True(t, out.Eligible)
}

func TestYearlyCapDiffersByGender(t *testing.T) {
	male := AssessAt(now, Answers{Gender: "male", Age: 30, WeightKg: 80, DonationsThisYear: 5})
	assert.True(t, male.Eligible)

	female := AssessAt(now, Answers{Gender: "female", Age: 30, WeightKg: 60, DonationsThisYear: 5})
	assert.False(t, female.Eligible)
	assert.Equal(t, RiskMedium, female.OverallRisk)

	maleOver := AssessAt(now, Answers{Gender: "male", Age: 30, WeightKg: 80, DonationsThisYear: 7})
	assert.False(t, maleOver.Eligible)
}

func TestRecentDonationIsHighRisk(t *testing.T) {
	out := AssessAt(now, Answers{Gender: "male", Age: 30, WeightKg: 80, LastDonationDate: daysAgo(20)})

	assert.False(t, out.Eligible)
	assert.Equal(t, RiskHigh, out.OverallRisk)
}

func TestDonationPastGapIsFine(t *testing.T) {
	out := AssessAt(now, Answers{Gender: "male", Age: 30, WeightKg: 80, LastDonationDate: daysAgo(60)})

	assert.True(t, out.Eligible)
}

func TestPregnancyIsHighRisk(t *testing.T) {
	out := AssessAt(now, Answers{Gender: "female", Age: 30, WeightKg: 60, PregnantOrRecentBirth: true})

	assert.False(t, out.Eligible)
	assert.Equal(t, RiskHigh, out.OverallRisk)
}

func TestFemaleMediumRiskFactors(t *testing.T) {
	out := AssessAt(now, Answers{
		Gender: "female", Age: 30, WeightKg: 60,
		MenstrualCycleNow: true, LowIronHistory: true,
	})

	assert.False(t, out.Eligible)
	assert.Equal(t, RiskMedium, out.OverallRisk)
	assert.Len(t, out.Risks, 2)
}

func TestMaleMediumRiskFactors(t *testing.T) {
	out := AssessAt(now, Answers{
		Gender: "male", Age: 30, WeightKg: 80,
		ProstateIssues: true, TestosteroneSupplement: true,
	})

	assert.False(t, out.Eligible)
	assert.Equal(t, RiskMedium, out.OverallRisk)
	assert.Len(t, out.Risks, 2)
}

func TestGeneralHealthConcernForOtherGender(t *testing.T) {
	ok := AssessAt(now, Answers{Gender: "other", Age: 30, WeightKg: 70, GeneralHealthConcern: "none"})
	assert.True(t, ok.Eligible)

	flagged := AssessAt(now, Answers{Gender: "other", Age: 30, WeightKg: 70, GeneralHealthConcern: "frequent dizziness"})
	assert.False(t, flagged.Eligible)
	assert.Equal(t, RiskMedium, flagged.OverallRisk)
}

func TestRiskNeverDowngrades(t *testing.T) {
	// A HIGH flag early must survive later MEDIUM flags.
	out := AssessAt(now, Answers{
		Gender: "female", Age: 16, WeightKg: 60,
		MenstrualCycleNow: true,
	})

	assert.Equal(t, RiskHigh, out.OverallRisk)
	assert.False(t, out.Eligible)
}

func TestGenderIsNormalized(t *testing.T) {
	out := AssessAt(now, Answers{Gender: "  FEMALE ", Age: 30, WeightKg: 52})

	assert.Equal(t, RiskMedium, out.OverallRisk)
}
