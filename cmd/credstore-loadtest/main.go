// Command credstore-loadtest measures the Redis credential store under load.
//
// It seeds one store per simulated panel instance, then runs two phases: a read
// phase (fetch the stored token pair, the hot path of every authenticated
// operation) and a rotate phase (replace both tokens, what a refresh does).
// Latency percentiles and throughput are printed per phase.
//
// Without -redis-addr (or REDIS_ADDR) an embedded miniredis is used, which
// measures client overhead rather than a real deployment.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tatyanamixx/nebulahunt-admin-sub001/credstore"
)

func main() {
	var (
		panels      = flag.Int("panels", 10000, "number of panel instances to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (read + rotate)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "lt", "store key prefix")
	)
	flag.Parse()

	if *panels <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "panels, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var cleanup func()
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		cleanup = mr.Close
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		cleanup = func() {}
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	log := zerolog.Nop()
	stores := make([]*credstore.Redis, *panels)
	fmt.Printf("seeding %d panel stores...\n", *panels)
	startSeed := time.Now()
	for i := 0; i < *panels; i++ {
		stores[i] = credstore.NewRedis(client, fmt.Sprintf("%s-%d", *prefix, i), log)
		stores[i].Set(credstore.KeyAccessToken, tokenFor(i, 0))
		stores[i].Set(credstore.KeyRefreshToken, tokenFor(i, 1))
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	readStats := runReadPhase(stores, *ops, *concurrency)
	rotateStats := runRotatePhase(stores, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("read", readStats)
	printStats("rotate", rotateStats)
}

func runReadPhase(stores []*credstore.Redis, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(stores))
				t0 := time.Now()
				_, okAccess := stores[idx].Get(credstore.KeyAccessToken)
				_, okRefresh := stores[idx].Get(credstore.KeyRefreshToken)
				d := time.Since(t0)
				if !okAccess || !okRefresh {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runRotatePhase(stores []*credstore.Redis, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(stores))
				t0 := time.Now()
				stores[idx].Set(credstore.KeyAccessToken, tokenFor(idx, i))
				stores[idx].Set(credstore.KeyRefreshToken, tokenFor(idx, i+1))
				d := time.Since(t0)

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

func tokenFor(panel, generation int) string {
	return fmt.Sprintf("tok-%d-%d", panel, generation)
}
