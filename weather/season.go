package weather

import (
	"fmt"
	"math"
	"time"
)

// Season is a meteorological season.
type Season string

const (
	Winter Season = "winter"
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
)

const tropicLatitude = 23.44

// SeasonOf returns the meteorological season of month at latitude.
func SeasonOf(month time.Month, latitude float64) Season {
	var s Season
	switch month {
	case time.December, time.January, time.February:
		s = Winter
	case time.March, time.April, time.May:
		s = Spring
	case time.June, time.July, time.August:
		s = Summer
	default:
		s = Autumn
	}
	if latitude < 0 {
		return opposite(s)
	}
	return s
}

func opposite(s Season) Season {
	switch s {
	case Winter:
		return Summer
	case Summer:
		return Winter
	case Spring:
		return Autumn
	default:
		return Spring
	}
}

var seasonalTips = map[Season]string{
	Winter: "cold days and early sunsets, so pack warm layers and plan indoor alternatives",
	Spring: "mild but changeable weather with occasional showers, so bring a light jacket",
	Summer: "warm to hot days with long daylight, so carry water and sun protection",
	Autumn: "cooling temperatures and more frequent rain, so pack layers and an umbrella",
}

// seasonalGuidance describes typical conditions for month at latitude.
func seasonalGuidance(month time.Month, latitude float64) string {
	if math.Abs(latitude) < tropicLatitude {
		return fmt.Sprintf("tropical conditions in %s: warm year-round with humid air and short, heavy showers, so pack breathable clothing and rain gear", month)
	}
	s := SeasonOf(month, latitude)
	return fmt.Sprintf("typical %s conditions for %s: %s", s, month, seasonalTips[s])
}
