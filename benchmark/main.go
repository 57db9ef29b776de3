// Package main provides a performance benchmarking tool for the Livemeasure CLI.
// It generates synthetic issue files of increasing size, runs compute on each
// several times with and without a measure store, treating the first successful
// stored run as cold and averaging the rest as warm, and writes CSV output.
//
// Prerequisites:
// - livemeasure binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where synthetic issue files are generated
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/livemeasure/core/agg"
	"github.com/huangsam/livemeasure/schema"
)

// BenchmarkResult holds the result of a benchmark run (no-store average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset     string
	Command     string
	NoStoreTime string
	ColdTime    string
	WarmTime    string
}

// Dataset describes one synthetic issue file.
type Dataset struct {
	Name       string
	Components int
	Issues     int // Issues per component
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Workers     int
	NoStoreRuns int
	StoreRuns   int
	Datasets    []Dataset
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		Workers:     14,
		NoStoreRuns: 3,
		StoreRuns:   4,
		Datasets: []Dataset{
			{Name: "small", Components: 10, Issues: 50},
			{Name: "medium", Components: 100, Issues: 200},
			{Name: "large", Components: 500, Issues: 1000},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Clear the store using livemeasure store clear
	fmt.Printf("Clearing store...\n")
	clearCmd := exec.Command("livemeasure", "store", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear store: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Store cleared successfully\n")
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the livemeasure binary and the work dir exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("livemeasure"); err != nil {
		return fmt.Errorf("livemeasure binary not found in PATH")
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("cannot create work dir %s: %w", config.WorkDir, err)
	}
	return nil
}

var (
	ruleTypes  = schema.AllRuleTypes
	severities = schema.AllSeverities
	statuses   = schema.AllStatuses
)

// generateInput writes a deterministic synthetic issue file for a dataset.
func generateInput(d Dataset, path string) error {
	rng := rand.New(rand.NewPCG(42, uint64(d.Components)))
	now := time.Now().UTC()
	input := &schema.Input{Components: make([]schema.Component, 0, d.Components)}

	for c := range d.Components {
		component := schema.Component{
			Key:      fmt.Sprintf("component-%04d", c),
			Ncloc:    1000 + rng.IntN(50000),
			NewNcloc: rng.IntN(2000),
			Issues:   make([]schema.Issue, 0, d.Issues),
		}
		for i := range d.Issues {
			status := statuses[rng.IntN(len(statuses))]
			issue := schema.Issue{
				Key:       fmt.Sprintf("%s-%d", component.Key, i),
				RuleType:  ruleTypes[rng.IntN(len(ruleTypes))],
				Severity:  severities[rng.IntN(len(severities))],
				Status:    status,
				Effort:    float64(5 * (1 + rng.IntN(24))),
				CreatedAt: now.Add(-time.Duration(rng.IntN(365*24)) * time.Hour),
			}
			if status.IsResolved() {
				issue.Resolution = schema.ResolutionFixed
			}
			component.Issues = append(component.Issues, issue)
		}
		input.Components = append(input.Components, component)
	}
	return agg.SaveInput(path, input)
}

// runBenchmarks executes all benchmark tests across configured datasets
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d workers, no-store: %d runs, store: %d runs\n",
		len(config.Datasets), config.Timeout, config.Workers, config.NoStoreRuns, config.StoreRuns)

	for _, d := range config.Datasets {
		inputPath := filepath.Join(config.WorkDir, fmt.Sprintf("issues-%s.json", d.Name))
		fmt.Printf("Generating %s dataset (%d components x %d issues)\n", d.Name, d.Components, d.Issues)
		if err := generateInput(d, inputPath); err != nil {
			return nil, fmt.Errorf("failed to generate %s dataset: %w", d.Name, err)
		}

		results = append(results,
			runBenchmarkSuite(config, d.Name, "compute", "compute", fmt.Sprintf("--input %s", inputPath)),
			runBenchmarkSuite(config, d.Name, "compute-leak", "compute", fmt.Sprintf("--input %s --leak-period \"30 days\"", inputPath)),
			runBenchmarkSuite(config, d.Name, "gate-check", "gate check", fmt.Sprintf("--input %s", inputPath)),
		)
	}

	return results, nil
}

// runBenchmarkSuite runs both no-store and store benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, dataset, label, command, extraArgs string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", label, dataset)

	// Helper to run a benchmark phase
	runPhase := func(storeBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, command, extraArgs, storeBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-store runs
	_, noStoreAvg := runPhase("none", config.NoStoreRuns, "No-store")

	// Phase 2: Store runs
	coldTime, warmAvg := runPhase("sqlite", config.StoreRuns, "Store")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-store average: %s, Cold time: %s, Warm average: %s\n", noStoreAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:     dataset,
		Command:     label,
		NoStoreTime: noStoreAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a livemeasure command multiple times with the specified store backend
// and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, command, extraArgs, storeBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := strings.Fields(command)
	args = append(args, "--store-backend", storeBackend, "--workers", fmt.Sprint(config.Workers))
	if extraArgs != "" {
		args = append(args, parseArgs(extraArgs)...)
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("livemeasure", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if isSuccess(output, command, cmdErr) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

func parseArgs(argsStr string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false

	for _, r := range argsStr {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case ' ':
			if !inQuotes && current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			} else if inQuotes {
				current.WriteRune(r)
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}

// isSuccess checks if command output indicates successful completion.
// A failing gate check still counts as a completed run.
func isSuccess(output []byte, command string, err error) bool {
	outputStr := string(output)
	if command == "gate check" {
		return strings.Contains(outputStr, "Checked") && strings.Contains(outputStr, "components in")
	}
	return err == nil && strings.Contains(outputStr, "Compute completed in") && strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/livemeasure_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"dataset", "cmd", "no_store_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.NoStoreTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "compute", "Compute:")
	printCommandSummary(results, "compute-leak", "Compute with leak period:")
	printCommandSummary(results, "gate-check", "Gate check:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-8s: No-store: %s, Cold: %s, Warm: %s\n", result.Dataset, result.NoStoreTime, result.ColdTime, result.WarmTime)
		}
	}
}
