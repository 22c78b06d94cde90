package service

import (
	"fmt"
	"math"

	"github.com/skylarnam/KakaoChatParserV2/internal/domain"
	"github.com/skylarnam/KakaoChatParserV2/internal/dto"
)

// SummarizeDemographics estimates ages and gender split from display names.
// Names that do not parse are skipped; an unrecognized gender code only
// removes the user from the gender figures. Ages are computed for currentYear.
func SummarizeDemographics(userNames []string, currentYear int) *dto.ActiveUserStatsResponse {
	var (
		ageSum, maleAgeSum, femaleAgeSum int
		parsed, males, females           int
	)

	for _, name := range userNames {
		profile, ok := domain.ParseProfile(name)
		if !ok {
			continue
		}
		age := profile.AgeIn(currentYear)
		parsed++
		ageSum += age

		switch profile.Gender {
		case domain.GenderMale:
			males++
			maleAgeSum += age
		case domain.GenderFemale:
			females++
			femaleAgeSum += age
		}
	}

	if parsed == 0 {
		return &dto.ActiveUserStatsResponse{}
	}

	activeCount := len(userNames)
	resp := &dto.ActiveUserStatsResponse{
		AvgAge:          average(ageSum, parsed),
		MaleAvgAge:      average(maleAgeSum, males),
		FemaleAvgAge:    average(femaleAgeSum, females),
		ActiveUserCount: &activeCount,
	}
	if males+females > 0 {
		ratio := fmt.Sprintf("%d:%d", males, females)
		resp.GenderRatio = &ratio
	}
	return resp
}

func average(sum, count int) *float64 {
	if count == 0 {
		return nil
	}
	avg := roundTo(float64(sum)/float64(count), 1)
	return &avg
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
