package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/loglens/internal/client"
	domain "github.com/bryanwahyu/loglens/internal/domain/analysis"
)

var version = "dev"

var (
	serverURL string
	apiKey    string
	timeout   time.Duration
	limit     int
	rawOutput bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "loglens-cli",
		Short: "LogLens CLI - security log analysis client",
		Long: `LogLens CLI sends security log lines to a LogLens server for
threat classification and reads back health and analysis history.`,
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("LOGLENS_SERVER", "http://localhost:8080"), "LogLens server URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("LOGLENS_API_KEY"), "API key for /api routes")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 90*time.Second, "request timeout")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [log line]",
		Short: "Analyze a log line (use - to read lines from stdin)",
		Args:  cobra.MinimumNArgs(1),
		Run:   analyze,
	}
	analyzeCmd.Flags().BoolVar(&rawOutput, "raw", false, "print the model output only")

	historyCmd := &cobra.Command{Use: "history", Short: "List archived analyses", Run: history}
	historyCmd.Flags().IntVar(&limit, "limit", 20, "number of records (max 100)")

	rootCmd.AddCommand(
		analyzeCmd,
		historyCmd,
		&cobra.Command{Use: "health", Short: "Show server health", Run: health},
		&cobra.Command{Use: "version", Short: "Print the CLI version", Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("loglens-cli", version)
		}},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newClient() *client.Client {
	return client.New(serverURL, apiKey, timeout)
}

func analyze(cmd *cobra.Command, args []string) {
	c := newClient()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if len(args) == 1 && args[0] == "-" {
		sc := bufio.NewScanner(os.Stdin)
		sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
		failed := false
		for sc.Scan() {
			line := sc.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			if !analyzeOne(ctx, c, line) {
				failed = true
			}
		}
		if err := sc.Err(); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if failed {
			os.Exit(1)
		}
		return
	}

	if !analyzeOne(ctx, c, strings.Join(args, " ")) {
		os.Exit(1)
	}
}

func analyzeOne(ctx context.Context, c *client.Client, line string) bool {
	text, err := c.Analyze(ctx, line)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return false
	}
	if rawOutput {
		fmt.Println(text)
		return true
	}

	r := domain.ParseReport(text)
	fmt.Printf(`
Log:                %s
Classification:     %s
Risk Score:         %d/10 (%s)
Summary:            %s
`, line, r.ThreatClassification, r.RiskScore, r.RiskLevel, r.Summary)
	if !r.Parsed {
		fmt.Printf("\nRaw analysis:\n%s\n", text)
	}
	return true
}

func health(cmd *cobra.Command, args []string) {
	h, err := newClient().Health(context.Background())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	out, _ := json.MarshalIndent(h, "", "  ")
	fmt.Println(string(out))
}

func history(cmd *cobra.Command, args []string) {
	recs, err := newClient().History(context.Background(), limit)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tRISK\tCLASSIFICATION\tLOG")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%d (%s)\t%s\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.RiskScore, r.RiskLevel,
			truncate(r.ThreatClassification, 40), truncate(r.LogEntry, 60))
	}
	w.Flush()
	fmt.Printf("\nTotal: %d analyses\n", len(recs))
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
