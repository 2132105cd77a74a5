// Bench is a benchmarking tool for measuring KeySpace build and persistence
// cost, SessionMapping construction throughput, lookup latency and memory
// usage.
//
// Usage:
//
//	go run ./cmd/bench -keys 100000 -fill 0.05 -mappings 10000 -workers 8
//
// Flags:
//
//	-keys       Key universe size (default: 100,000)
//	-fill       Fraction of keys set in each mapping (default: 0.05)
//	-mappings   Number of mappings to build (default: 1,000)
//	-workers    Number of parallel workers for building mappings (default: 1)
//	-hasher     Key space hasher: xxh3 or murmur3 (default: xxh3)
//	-queries    Number of Get calls to time (default: 1,000,000)
package main

import (
	"context"
	"flag"
	"fmt"
	mrand "math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/tamirms/munin"
)

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024
	}
	return maxRSS
}

func main() {
	keysFlag := flag.Int("keys", 100_000, "key universe size")
	fillFlag := flag.Float64("fill", 0.05, "fraction of keys set in each mapping")
	mappingsFlag := flag.Int("mappings", 1_000, "number of mappings to build")
	workersFlag := flag.Int("workers", 1, "number of parallel workers for building mappings")
	hasherFlag := flag.String("hasher", "xxh3", "key space hasher: xxh3 or murmur3")
	queriesFlag := flag.Int("queries", 1_000_000, "number of Get calls to time")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file (mapping build phase only)")
	flag.Parse()

	numKeys := *keysFlag
	if numKeys <= 0 || *mappingsFlag <= 0 || *fillFlag <= 0 || *fillFlag > 1 {
		fmt.Println("keys and mappings must be positive and fill must be in (0, 1]")
		return
	}

	hasher, err := munin.ParseHasher(*hasherFlag)
	if err != nil {
		fmt.Printf("%v\n", err)
		return
	}

	fmt.Println("Generating keys...")
	keys := make([]string, numKeys)
	for i := range keys {
		keys[i] = fmt.Sprintf("attr-%08x-%d", mrand.Uint32(), i)
	}

	fmt.Println("Building key space...")
	ksStart := time.Now()
	ks, err := munin.NewKeySpace(keys, munin.WithHasher(hasher))
	if err != nil {
		fmt.Printf("NewKeySpace failed: %v\n", err)
		return
	}
	ksDuration := time.Since(ksStart)

	tmpDir, err := os.MkdirTemp("", "munin-bench-")
	if err != nil {
		fmt.Printf("Failed to create temp dir: %v\n", err)
		return
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()
	ksPath := filepath.Join(tmpDir, "keys.munk")

	fmt.Println("Writing and reopening key space...")
	ioStart := time.Now()
	if err := munin.WriteKeySpace(ksPath, ks); err != nil {
		fmt.Printf("WriteKeySpace failed: %v\n", err)
		return
	}
	ks, err = munin.OpenKeySpace(ksPath)
	if err != nil {
		fmt.Printf("OpenKeySpace failed: %v\n", err)
		return
	}
	ioDuration := time.Since(ioStart)
	info, _ := os.Stat(ksPath)

	fmt.Println("Generating mapping inputs...")
	perMapping := max(int(float64(numKeys) * *fillFlag), 1)
	inputs := make([]map[string]int64, *mappingsFlag)
	for i := range inputs {
		in := make(map[string]int64, perMapping)
		for range perMapping {
			in[keys[mrand.IntN(numKeys)]] = mrand.Int64N(1 << 40)
		}
		inputs[i] = in
	}

	runtime.GC()
	var baseline runtime.MemStats
	runtime.ReadMemStats(&baseline)
	baselineRSS := getMaxRSS()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Printf("could not create CPU profile: %v\n", err)
			return
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Printf("could not start CPU profile: %v\n", err)
			return
		}
	}

	fmt.Println("Building mappings...")
	buildStart := time.Now()
	mappings, err := munin.BuildMappings(context.Background(), munin.Session[string](ks), inputs, -1,
		munin.WithWorkers[int64](*workersFlag))
	buildDuration := time.Since(buildStart)

	if *cpuprofile != "" {
		pprof.StopCPUProfile()
	}
	if err != nil {
		fmt.Printf("BuildMappings failed: %v\n", err)
		return
	}

	var final runtime.MemStats
	runtime.ReadMemStats(&final)
	heapMem := int64(final.Alloc) - int64(baseline.Alloc)
	rssMem := int64(getMaxRSS()) - int64(baselineRSS)

	fmt.Println("Benchmarking lookups...")
	numQueries := *queriesFlag
	queryKeys := make([]string, 4096)
	for i := range queryKeys {
		queryKeys[i] = keys[mrand.IntN(numKeys)]
	}
	var sink int64
	queryStart := time.Now()
	for i := 0; i < numQueries; i++ {
		m := mappings[i%len(mappings)]
		v, _ := m.Get(queryKeys[i%len(queryKeys)]) // Benchmark: measuring throughput, not correctness
		sink += v
	}
	queryDuration := time.Since(queryStart)
	avgLatency := float64(queryDuration.Nanoseconds()) / float64(max(numQueries, 1))

	iterStart := time.Now()
	entries := 0
	for _, m := range mappings {
		for range m.All() {
			entries++
		}
	}
	iterDuration := time.Since(iterStart)

	fmt.Printf("\n")
	fmt.Printf("╔═════════════════════╦════════════════════╗\n")
	fmt.Printf("║ Hasher: %-12s║ Workers: %-10d║\n", hasher, *workersFlag)
	fmt.Printf("╠═════════════════════╬════════════════════╣\n")
	fmt.Printf("║ Key space build     ║ %8.2f ms        ║\n", float64(ksDuration.Microseconds())/1000)
	fmt.Printf("║ Key space write+open║ %8.2f ms        ║\n", float64(ioDuration.Microseconds())/1000)
	fmt.Printf("║ Key space file      ║ %8.1f KB        ║\n", float64(info.Size())/1000)
	fmt.Printf("║ Mappings built      ║ %8d           ║\n", len(mappings))
	fmt.Printf("║ Entries per mapping ║ %8.1f           ║\n", float64(entries)/float64(len(mappings)))
	fmt.Printf("║ Build time          ║ %8.2f sec       ║\n", buildDuration.Seconds())
	fmt.Printf("║ Build throughput    ║ %8.0f maps/sec  ║\n", float64(len(mappings))/buildDuration.Seconds())
	fmt.Printf("║ Get latency         ║ %8.1f ns        ║\n", avgLatency)
	fmt.Printf("║ Iterate all         ║ %8.2f ms        ║\n", float64(iterDuration.Microseconds())/1000)
	fmt.Printf("║ Heap growth         ║ %8.1f MB        ║\n", float64(heapMem)/1_000_000)
	fmt.Printf("║ RSS growth          ║ %8.1f MB        ║\n", float64(rssMem)/1_000_000)
	fmt.Printf("╚═════════════════════╩════════════════════╝\n")
	_ = sink
}
