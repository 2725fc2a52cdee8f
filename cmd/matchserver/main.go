package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"stmatch/pkg/api"
	"stmatch/pkg/mm"
	"stmatch/pkg/network"
	"stmatch/pkg/spatial"
)

func main() {
	networkPath := flag.String("network-file", "", "Path to the road network GeoJSON file (required)")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	gpsErr := flag.Float64("gps-err", 1e-4, "Default emission std-dev for /api/v1/match requests that omit gps_err")
	radius := flag.Float64("radius", 1e-2, "Default candidate search radius")
	knn := flag.Int("knn", 4, "Default candidates kept per sample")
	maxSpeed := flag.Float64("max-speed", 30.0, "Default max speed, coordinate-units per time-unit")
	factor := flag.Float64("factor", 4.0, "Default slack multiplier on the max-gps-distance gate")
	reverseTolerance := flag.Float64("reverse-tolerance", 4.0, "Default backward jitter tolerance on a shared edge")
	flag.Parse()

	if *networkPath == "" {
		log.Fatalf("--network-file is required")
	}

	start := time.Now()

	log.Printf("Loading road network from %s...", *networkPath)
	f, err := os.Open(*networkPath)
	if err != nil {
		log.Fatalf("Failed to open network file: %v", err)
	}
	n, err := network.Load(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to load road network: %v", err)
	}
	log.Printf("Loaded: %d nodes, %d edges", n.NodeCount(), n.EdgeCount())

	log.Println("Building spatial index...")
	idx := spatial.Build(n)

	matcher, err := mm.New(n, idx)
	if err != nil {
		log.Fatalf("Failed to build matcher: %v", err)
	}

	// Reclaim memory from init-time temporaries. Without this, Go's heap
	// retains peak RSS from index construction (GC doubles heap each cycle:
	// 120→240→480→960→1920 MB). This returns unused pages to the OS.
	runtime.GC()
	debug.FreeOSMemory()

	loadTime := time.Since(start)
	log.Printf("Ready in %s", loadTime.Round(time.Millisecond))

	addr := fmt.Sprintf(":%d", *port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin

	defaults := mm.Config{
		GPSErr:           *gpsErr,
		Radius:           *radius,
		KNN:              *knn,
		MaxSpeed:         *maxSpeed,
		Factor:           *factor,
		ReverseTolerance: *reverseTolerance,
	}

	stats := api.StatsResponse{
		NumNodes: n.NodeCount(),
		NumEdges: n.EdgeCount(),
	}

	handlers := api.NewHandlers(matcher, defaults, stats)
	srv := api.NewServer(cfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
