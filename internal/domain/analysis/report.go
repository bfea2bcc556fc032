package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

// RiskLevel buckets a 1-10 risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

const (
	defaultRiskScore = 5
	notSpecified     = "Not specified"
)

// Report is a structured reading of the model's free-text answer. It exists
// for display only; the raw analysis text stays authoritative.
type Report struct {
	ThreatClassification string    `json:"threat_classification"`
	RiskText             string    `json:"risk_text"`
	RiskScore            int       `json:"risk_score"`
	RiskLevel            RiskLevel `json:"risk_level"`
	Summary              string    `json:"summary"`
	Parsed               bool      `json:"parsed"`
}

var (
	rxThreatLabel  = regexp.MustCompile(`(?i)(?:\d+\.\s*)?\**\s*threat\s+classification\s*\**\s*:\s*\**`)
	rxRiskLabel    = regexp.MustCompile(`(?i)(?:\d+\.\s*)?\**\s*risk\s+score\s*\**\s*:\s*\**`)
	rxSummaryLabel = regexp.MustCompile(`(?i)(?:\d+\.\s*)?\**\s*summary\s*\**\s*:\s*\**`)
	rxFirstNumber  = regexp.MustCompile(`\d+`)
	rxLeadStars    = regexp.MustCompile(`^\s*\*\*\s*`)
	rxTrailStars   = regexp.MustCompile(`\s*\*\*\s*$`)
)

// ParseReport extracts the three sections the prompt asks for. It never fails:
// sections that cannot be located read "Not specified" and the score falls
// back to 5.
func ParseReport(text string) Report {
	labels := []*regexp.Regexp{rxThreatLabel, rxRiskLabel, rxSummaryLabel}
	locs := make([][]int, len(labels))
	for i, rx := range labels {
		locs[i] = rx.FindStringIndex(text)
	}

	sections := make([]string, len(labels))
	for i, loc := range locs {
		if loc == nil {
			continue
		}
		end := len(text)
		for j, other := range locs {
			if j == i || other == nil {
				continue
			}
			if other[0] >= loc[1] && other[0] < end {
				end = other[0]
			}
		}
		sections[i] = cleanSection(text[loc[1]:end])
	}

	rep := Report{
		ThreatClassification: orNotSpecified(sections[0]),
		RiskText:             orNotSpecified(sections[1]),
		Summary:              orNotSpecified(sections[2]),
		RiskScore:            defaultRiskScore,
		Parsed:               sections[0] != "" || sections[1] != "" || sections[2] != "",
	}
	if m := rxFirstNumber.FindString(sections[1]); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n >= 1 && n <= 10 {
			rep.RiskScore = n
		}
	}
	rep.RiskLevel = LevelForScore(rep.RiskScore)
	return rep
}

// LevelForScore maps 1-3 to low, 7-10 to high and everything else to medium.
func LevelForScore(score int) RiskLevel {
	switch {
	case score <= 3:
		return RiskLow
	case score >= 7:
		return RiskHigh
	default:
		return RiskMedium
	}
}

func cleanSection(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, l := range lines {
		l = rxLeadStars.ReplaceAllString(l, "")
		lines[i] = rxTrailStars.ReplaceAllString(l, "")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func orNotSpecified(s string) string {
	if s == "" {
		return notSpecified
	}
	return s
}
