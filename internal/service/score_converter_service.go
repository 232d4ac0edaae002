package service

import (
	"fmt"
	"math"
)

type ScoreConverterService interface {
	// ToPercentage expresses a raw score as a percentage of the exam's total
	// points, rounded to two decimals.
	ToPercentage(rawScore, totalPoints float64) (float64, error)
}

type scoreConverterServiceImpl struct{}

func NewScoreConverterService() ScoreConverterService {
	return &scoreConverterServiceImpl{}
}

func (s *scoreConverterServiceImpl) ToPercentage(rawScore, totalPoints float64) (float64, error) {
	if totalPoints <= 0 {
		return 0, nil
	}
	if rawScore < 0 || rawScore > totalPoints {
		return 0, fmt.Errorf("raw score %.2f is out of valid range (0-%.2f)", rawScore, totalPoints)
	}
	return roundScore(rawScore / totalPoints * 100), nil
}

// roundScore keeps two decimals, matching the storage precision of scores.
func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
