package prompt

import "fmt"

const threatAnalysisTemplate = `Analyze the following security log for potential threats.
Provide your analysis in three parts:
1.  **Threat Classification:** (e.g., Brute-force Attack, Port Scanning, Malware Activity, Reconnaissance, etc.)
2.  **Risk Score:** A number from 1 (Low) to 10 (High).
3.  **Summary:** A brief, one-sentence explanation of the potential threat.

Log Entry: "%s"
`

// ThreatAnalysis builds the instruction sent to the model for one log line.
// The line is embedded exactly as received; nothing is escaped, so a crafted
// entry can steer the model.
func ThreatAnalysis(logEntry string) string {
	return fmt.Sprintf(threatAnalysisTemplate, logEntry)
}
