package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lifelink/blood-donation-api/internal/screening"
)

// ScreeningHandler runs the health questionnaire. It is pure
// computation; nothing is persisted.
type ScreeningHandler struct{}

func NewScreeningHandler() *ScreeningHandler { return &ScreeningHandler{} }

type screeningReq struct {
	Gender            string     `json:"gender"`
	Age               int        `json:"age"`
	WeightKg          float64    `json:"weight_kg"`
	DonationsThisYear int        `json:"donations_this_year"`
	LastDonationDate  *time.Time `json:"last_donation_date"`

	PregnantOrRecentBirth bool `json:"pregnant_or_recent_birth"`
	MenstrualCycleNow     bool `json:"menstrual_cycle_now"`
	LowIronHistory        bool `json:"low_iron_history"`

	ProstateIssues         bool `json:"prostate_issues"`
	TestosteroneSupplement bool `json:"testosterone_supplement"`

	GeneralHealthConcern string `json:"general_health_concern"`
}

type screeningResp struct {
	Eligible        bool     `json:"eligible"`
	OverallRisk     string   `json:"overall_risk"`
	Risks           []string `json:"risks"`
	Recommendations []string `json:"recommendations"`
}

// Screen evaluates the questionnaire and returns the risk assessment.
func (h *ScreeningHandler) Screen(c echo.Context) error {
	var req screeningReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if req.Age <= 0 || req.WeightKg <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "age and weight_kg are required"})
	}

	out := screening.Assess(screening.Answers{
		Gender:                 req.Gender,
		Age:                    req.Age,
		WeightKg:               req.WeightKg,
		DonationsThisYear:      req.DonationsThisYear,
		LastDonationDate:       req.LastDonationDate,
		PregnantOrRecentBirth:  req.PregnantOrRecentBirth,
		MenstrualCycleNow:      req.MenstrualCycleNow,
		LowIronHistory:         req.LowIronHistory,
		ProstateIssues:         req.ProstateIssues,
		TestosteroneSupplement: req.TestosteroneSupplement,
		GeneralHealthConcern:   req.GeneralHealthConcern,
	})

	risks := out.Risks
	if risks == nil {
		risks = []string{}
	}
	return c.JSON(http.StatusOK, screeningResp{
		Eligible:        out.Eligible,
		OverallRisk:     out.OverallRisk,
		Risks:           risks,
		Recommendations: out.Recommendations,
	})
}
