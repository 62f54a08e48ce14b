package tracker

import (
	"fmt"
	"math"

	"diet-agent/internal/models"
)

const (
	maxRecommendations = 5
	minLoggedDays      = 5
	lowWaterML         = 1500
	healthyWeeklyLoss  = -0.5
)

const (
	msgOverTarget      = "You're averaging above your calorie target. Try portion control or swap high-calorie snacks."
	msgUnderTarget     = "You're eating too little. Severe restriction can slow metabolism. Aim closer to your target."
	msgHealthyLoss     = "Great progress this week! You're losing weight at a healthy rate."
	msgEatMoreForGain  = "You need to eat more to build muscle. Add calorie-dense healthy foods."
	msgProteinForGain  = "Increase protein intake for muscle growth. Add eggs, chicken, or protein shakes."
	msgLogConsistently = "Try to log your meals more consistently. Tracking helps you stay aware of your intake."
	msgLowWater        = "Your water intake seems low. Aim for at least 2-3 liters daily."
	msgExcellentWeek   = "Excellent consistency this week! Keep up the great work!"
	msgGoodWeek        = "Good progress! You're building healthy habits."
)

// Recommend runs the weekly rules in order: goal-specific checks, low
// protein, logging consistency, hydration, then a leading praise line for
// consistent weeks. At most five lines are returned.
func Recommend(p *models.Profile, r *models.WeeklyReport) []string {
	recs := []string{}
	targets := p.Targets()

	var calDiffPct float64
	if targets.Calories != 0 {
		calDiffPct = (r.AvgCalories - float64(targets.Calories)) / float64(targets.Calories) * 100
	}
	proteinTarget := float64(targets.ProteinG)

	switch p.GoalType {
	case models.GoalWeightLoss:
		switch {
		case calDiffPct > 10:
			recs = append(recs, msgOverTarget)
		case calDiffPct < -20:
			recs = append(recs, msgUnderTarget)
		case r.WeightChange != nil && *r.WeightChange <= healthyWeeklyLoss:
			recs = append(recs, msgHealthyLoss)
		}
	case models.GoalMuscleGain:
		if calDiffPct < -5 {
			recs = append(recs, msgEatMoreForGain)
		}
		if r.AvgProtein < proteinTarget*0.9 {
			recs = append(recs, msgProteinForGain)
		}
	}

	if r.AvgProtein < proteinTarget*0.8 {
		recs = append(recs, fmt.Sprintf(
			"Your protein intake is low (avg %dg vs target %dg). Add lean meats, eggs, legumes, or Greek yogurt.",
			int(math.Round(r.AvgProtein)), targets.ProteinG))
	}

	logged, onTrack := 0, 0
	for _, d := range r.Days {
		if d.MealsLogged > 0 {
			logged++
		}
		if d.OnTrack {
			onTrack++
		}
	}
	if logged < minLoggedDays {
		recs = append(recs, msgLogConsistently)
	}
	if r.AvgWaterML < lowWaterML {
		recs = append(recs, msgLowWater)
	}

	switch {
	case onTrack >= 5:
		recs = append([]string{msgExcellentWeek}, recs...)
	case onTrack >= 3:
		recs = append([]string{msgGoodWeek}, recs...)
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}
