package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/depradar/depradar/internal/engine"
	"github.com/depradar/depradar/internal/history"
	"github.com/depradar/depradar/internal/logger"
	"github.com/depradar/depradar/internal/output"
	"github.com/depradar/depradar/pkg/radar"
)

var (
	// Global flags
	configFile string
	verbose    bool
	debug      bool

	// Check flags
	method        string
	customHeaders []string
	timeout       int
	rateLimit     float64
	insecure      bool
	lenient       bool
	userAgent     string
	format        string
	pretty        bool
	historyFile   string

	// History flags
	historyLimit int
	clearHistory bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "depradar",
		Short: "depradar - API deprecation radar",
		Long: `depradar - Detect deprecated API endpoints and parameters.

Issues a request to a target URL, inspects the response for deprecation
headers (Sunset, Deprecation), and falls back to discovering the API's
OpenAPI description document to check whether the called operation or any
supplied query parameter is marked deprecated.`,
		Version: radar.Version,
	}

	checkCmd := &cobra.Command{
		Use:   "check [url]",
		Short: "Check a URL for deprecation",
		Long:  "Issue a request to the URL and report whether the endpoint or its query parameters are deprecated.",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded verdicts",
		Long:  "List previously recorded deprecation verdicts from the history database.",
		RunE:  runHistory,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug mode")

	// Check flags
	checkCmd.Flags().StringVarP(&method, "method", "X", "GET", "HTTP method for the request")
	checkCmd.Flags().StringArrayVar(&customHeaders, "deprecation-header", nil, "Additional header names treated as deprecation signals")
	checkCmd.Flags().IntVarP(&timeout, "timeout", "t", 10, "Request timeout in seconds")
	checkCmd.Flags().Float64VarP(&rateLimit, "rate-limit", "r", 0, "Discovery probes per second (0 = unlimited)")
	checkCmd.Flags().BoolVarP(&insecure, "insecure", "k", false, "Skip TLS certificate verification")
	checkCmd.Flags().BoolVar(&lenient, "lenient", false, "Treat a mismatched API description as not deprecated instead of failing")
	checkCmd.Flags().StringVar(&userAgent, "user-agent", "", "User agent for requests")
	checkCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	checkCmd.Flags().BoolVar(&pretty, "pretty", true, "Pretty-print JSON output")
	checkCmd.Flags().StringVar(&historyFile, "history-file", "", "Record the verdict in this history database")

	// History flags
	historyCmd.Flags().StringVar(&historyFile, "history-file", "", "History database to read")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum entries to show")
	historyCmd.Flags().BoolVar(&clearHistory, "clear", false, "Clear the history database")
	historyCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	historyCmd.MarkFlagRequired("history-file")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(historyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildConfig() (*radar.Config, error) {
	cfg := radar.DefaultConfig()
	if configFile != "" {
		loaded, err := radar.LoadFromFile(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.CustomHeaders = append(cfg.CustomHeaders, customHeaders...)
	cfg.Timeout = time.Duration(timeout) * time.Second
	cfg.RequestsPerSecond = rateLimit
	cfg.SkipTLSVerify = cfg.SkipTLSVerify || insecure
	cfg.LenientStructure = cfg.LenientStructure || lenient
	cfg.Verbose = cfg.Verbose || verbose
	cfg.Debug = cfg.Debug || debug
	if userAgent != "" {
		cfg.UserAgent = userAgent
	}
	if historyFile != "" {
		cfg.HistoryFile = historyFile
	}

	return cfg, cfg.Validate()
}

func buildLogger(cfg *radar.Config) *logger.Logger {
	level := logger.WarnLevel
	if cfg.Verbose {
		level = logger.InfoLevel
	}
	if cfg.Debug {
		level = logger.DebugLevel
	}
	return logger.New(logger.Config{
		Level:  level,
		Pretty: true,
		Output: os.Stderr,
	})
}

func runCheck(cmd *cobra.Command, args []string) error {
	target := args[0]

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	log := buildLogger(cfg)

	desc, err := engine.FromURL(target, strings.ToUpper(method))
	if err != nil {
		return err
	}

	rd, err := radar.New(
		radar.WithConfig(cfg),
		radar.WithLogger(log),
	)
	if err != nil {
		return err
	}
	defer rd.Close()

	// Issue the actual request to collect the response headers the
	// verdict is based on.
	req, err := http.NewRequestWithContext(cmd.Context(), strings.ToUpper(method), target, nil)
	if err != nil {
		return err
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	client := &http.Client{Timeout: cfg.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	resp.Body.Close()

	names := make([]string, 0, len(resp.Header))
	for name := range resp.Header {
		names = append(names, name)
	}

	verdict, err := rd.Evaluate(cmd.Context(), desc, names)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	report := &output.Report{
		URL:       target,
		Method:    strings.ToUpper(method),
		Verdict:   verdict,
		CheckedAt: time.Now().UTC(),
	}

	writer := output.NewWriter(os.Stdout, output.Config{Format: format, Pretty: pretty})
	defer writer.Close()
	if err := writer.WriteReport(report); err != nil {
		return err
	}

	if cfg.HistoryFile != "" {
		store, err := history.Open(cfg.HistoryFile)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer store.Close()

		if err := store.Append(history.Entry{
			CheckedAt: report.CheckedAt,
			URL:       report.URL,
			Method:    report.Method,
			Verdict:   verdict,
		}); err != nil {
			log.WithError(err).Warn("Failed to record verdict")
		}
	}

	if verdict.Deprecated {
		os.Exit(2)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := history.Open(historyFile)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	if clearHistory {
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Println("history cleared")
		return nil
	}

	entries, err := store.List(historyLimit)
	if err != nil {
		return err
	}

	writer := output.NewWriter(os.Stdout, output.Config{Format: format, Pretty: false})
	defer writer.Close()

	for _, e := range entries {
		report := &output.Report{
			URL:       e.URL,
			Method:    e.Method,
			Verdict:   e.Verdict,
			CheckedAt: e.CheckedAt,
		}
		if err := writer.WriteReport(report); err != nil {
			return err
		}
	}

	return nil
}
