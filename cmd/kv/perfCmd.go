package kv

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/credis/cmd/util"
	"github.com/ValentinKolb/credis/lib/client"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for a Sentinel supervised deployment",
		Long:    "",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)

	perfPercentiles = []float64{0.5, 0.9, 0.99}
)

// perfResult is the outcome of one benchmark
type perfResult struct {
	bench   testing.BenchmarkResult
	latency gometrics.Timer
}

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfKeySpread <= 0 {
		return fmt.Errorf("keys must be positive, got %d", perfKeySpread)
	}
	return nil
}

func run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	fmt.Println("Performance testing tool for a Sentinel supervised deployment")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	results := make(map[string]perfResult)
	largeValue := strings.Repeat("x", perfLargeValueSizeKB*1024)

	set := func(ctx context.Context, key string) error {
		_, err := kvClient.Set(ctx, key, "test", client.SetOptions{})
		return err
	}
	get := func(ctx context.Context, key string) error {
		_, err := kvClient.Get(ctx, key)
		return err
	}
	del := func(ctx context.Context, key string) error {
		_, err := kvClient.Delete(ctx, key)
		return err
	}
	exists := func(ctx context.Context, key string) error {
		_, err := kvClient.Exists(ctx, key)
		return err
	}

	benchmarks := []struct {
		name   string
		seed   bool
		op     func(ctx context.Context, key string) error
		absent bool
	}{
		{name: "set", op: set},
		{name: "set-large", op: func(ctx context.Context, key string) error {
			_, err := kvClient.Set(ctx, key, largeValue, client.SetOptions{})
			return err
		}},
		{name: "get", seed: true, op: get},
		{name: "delete", seed: true, op: del},
		{name: "exists", seed: true, op: exists},
		{name: "exists-not", op: exists, absent: true},
		{name: "incr", op: func(ctx context.Context, key string) error {
			_, err := kvClient.Incr(ctx, key, 1)
			return err
		}},
		{name: "mixed", seed: true, op: func(ctx context.Context, key string) error {
			// the op is picked by the key so every thread mixes all four
			switch key[len(key)-1] % 4 {
			case 0:
				return set(ctx, key)
			case 1:
				return get(ctx, key)
			case 2:
				return del(ctx, key)
			default:
				return exists(ctx, key)
			}
		}},
	}

	for _, bm := range benchmarks {
		if shouldSkip(bm.name) {
			results[bm.name] = perfResult{}
			printResult(bm.name, perfResult{})
			continue
		}
		res := benchmark(ctx, bm.name, bm.seed, bm.absent, bm.op)
		results[bm.name] = res
		printResult(bm.name, res)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// benchmark runs op in parallel on the keys of the test and records the
// latency of every single call
func benchmark(ctx context.Context, name string, seed, absent bool, op func(context.Context, string) error) perfResult {
	latency := gometrics.NewTimer()
	getKey, iter := getKeys(name)
	if absent {
		getKey = func(i int) string {
			return fmt.Sprintf("%s-%s-absent-%d", perfKeyPrefix, name, i%perfKeySpread)
		}
	}

	bench := testing.Benchmark(func(b *testing.B) {
		if seed {
			iter(func(k string) {
				if _, err := kvClient.Set(ctx, k, "test", client.SetOptions{}); err != nil {
					log.Printf("(%s) - error setting key: %v\n", name, err)
				}
			})
		}

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				if _, err := kvClient.Delete(ctx, k); err != nil {
					log.Printf("(%s) - error deleting key: %v\n", name, err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				if err := op(ctx, getKey(counter)); err != nil {
					log.Printf("(%s) - error: %v\n", name, err)
				}
				latency.UpdateSince(start)
				counter++
			}
		})
	})

	return perfResult{bench: bench, latency: latency}
}

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// opsPerSec converts the benchmark result, it returns 0 for skipped tests
func opsPerSec(result testing.BenchmarkResult) (float64, float64) {
	if result.NsPerOp() == 0 {
		return 0, 0
	}
	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	return nsPerOp, 1.0 / (nsPerOp / 1e9)
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result perfResult) {
	nsPerOp, ops := opsPerSec(result.bench)
	if nsPerOp == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	ps := result.latency.Percentiles(perfPercentiles)
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\tp50=%s p90=%s p99=%s\n",
		test, nsPerOp, time.Duration(nsPerOp), ops,
		time.Duration(ps[0]), time.Duration(ps[1]), time.Duration(ps[2]))
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]perfResult, config client.Config) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"P50", "P90", "P99",
		"Monitor", "MasterName", "SocketTimeout", "Codec", "Lazy",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		nsPerOp, ops := opsPerSec(result.bench)
		skipped := nsPerOp == 0

		percentiles := make([]string, len(perfPercentiles))
		if !skipped {
			for i, p := range result.latency.Percentiles(perfPercentiles) {
				percentiles[i] = time.Duration(p).String()
			}
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", ops),
			strconv.FormatBool(skipped),
		}
		row = append(row, percentiles...)
		row = append(row,
			config.Topology().Addr(),
			config.MasterName,
			config.SocketTimeout.String(),
			config.Codec,
			strconv.FormatBool(viper.GetBool("lazy")),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		)

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
