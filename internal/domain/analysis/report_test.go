package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReport_MarkdownList(t *testing.T) {
	text := "1.  **Threat Classification:** Brute-force Attack\n" +
		"2.  **Risk Score:** 7\n" +
		"3.  **Summary:** Repeated failed SSH logins for an invalid user suggest password guessing.\n"

	rep := ParseReport(text)

	assert.True(t, rep.Parsed)
	assert.Equal(t, "Brute-force Attack", rep.ThreatClassification)
	assert.Equal(t, "7", rep.RiskText)
	assert.Equal(t, 7, rep.RiskScore)
	assert.Equal(t, RiskHigh, rep.RiskLevel)
	assert.Equal(t, "Repeated failed SSH logins for an invalid user suggest password guessing.", rep.Summary)
}

func TestParseReport_PlainLabelsAcrossLines(t *testing.T) {
	text := "Threat Classification:\nReconnaissance\n\nRisk Score:\n2/10\n\nSummary:\nA scanner probed a WordPress setup page."

	rep := ParseReport(text)

	require.True(t, rep.Parsed)
	assert.Equal(t, "Reconnaissance", rep.ThreatClassification)
	assert.Equal(t, 2, rep.RiskScore)
	assert.Equal(t, RiskLow, rep.RiskLevel)
	assert.Equal(t, "A scanner probed a WordPress setup page.", rep.Summary)
}

func TestParseReport_OutOfRangeScoreFallsBack(t *testing.T) {
	rep := ParseReport("Threat Classification: Malware Activity\nRisk Score: 42\nSummary: odd")

	assert.Equal(t, 5, rep.RiskScore)
	assert.Equal(t, RiskMedium, rep.RiskLevel)
	assert.Equal(t, "42", rep.RiskText)
}

func TestParseReport_Unstructured(t *testing.T) {
	rep := ParseReport("I cannot classify this entry.")

	assert.False(t, rep.Parsed)
	assert.Equal(t, "Not specified", rep.ThreatClassification)
	assert.Equal(t, "Not specified", rep.RiskText)
	assert.Equal(t, "Not specified", rep.Summary)
	assert.Equal(t, 5, rep.RiskScore)
	assert.Equal(t, RiskMedium, rep.RiskLevel)
}

func TestParseReport_MissingSummary(t *testing.T) {
	rep := ParseReport("**Threat Classification:** Benign\n**Risk Score:** 1")

	assert.True(t, rep.Parsed)
	assert.Equal(t, "Benign", rep.ThreatClassification)
	assert.Equal(t, 1, rep.RiskScore)
	assert.Equal(t, RiskLow, rep.RiskLevel)
	assert.Equal(t, "Not specified", rep.Summary)
}

func TestLevelForScore(t *testing.T) {
	cases := map[int]RiskLevel{1: RiskLow, 3: RiskLow, 4: RiskMedium, 6: RiskMedium, 7: RiskHigh, 10: RiskHigh}
	for score, want := range cases {
		assert.Equal(t, want, LevelForScore(score), "score %d", score)
	}
}

func TestNewRequest(t *testing.T) {
	_, err := NewRequest("")
	assert.ErrorIs(t, err, ErrEmptyLogEntry)

	req, err := NewRequest("  ")
	require.NoError(t, err)
	assert.Equal(t, "  ", req.LogEntry)
}
