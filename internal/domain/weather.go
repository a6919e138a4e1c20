package domain

import "strings"

// weatherTypeAbbrev shortens weather types that would not fit the table.
var weatherTypeAbbrev = map[string]string{
	"thunderstorms": "TND",
	"rain showers":  "SHW",
}

// coveragePercent replaces probabilistic coverage words with a percentage.
var coveragePercent = map[string]string{
	"slight chance": "20%",
	"chance":        "40%",
	"likely":        "60%",
}

// ComposeConditions folds one interval's coded weather conditions into a
// compact text, e.g. " light SHW 40%, TND 20% (gusty winds)". The result keeps
// its leading separator; an empty result means no weather.
func ComposeConditions(entries []ConditionEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		intensity := e.Intensity
		if intensity == "none" {
			intensity = ""
		}
		qualifier := e.Qualifier
		if qualifier == "none" {
			qualifier = ""
		}

		if e.Additive != "" {
			if e.Additive == "and" {
				sb.WriteString(",")
			} else {
				sb.WriteString(" " + e.Additive)
			}
		}

		if intensity != "" {
			sb.WriteString(" " + intensity)
		}

		sb.WriteString(" " + translate(weatherTypeAbbrev, e.WeatherType))
		sb.WriteString(" " + translate(coveragePercent, e.Coverage))

		if qualifier != "" {
			sb.WriteString(" (" + qualifier + ")")
		}
	}
	return sb.String()
}

func translate(table map[string]string, s string) string {
	if v, ok := table[s]; ok {
		return v
	}
	return s
}
