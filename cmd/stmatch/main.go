// Command stmatch runs ST-Matching over a single trajectory file
// against a road network, printing the matched edge sequence as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"stmatch/pkg/mm"
	"stmatch/pkg/network"
	"stmatch/pkg/spatial"
	"stmatch/pkg/traj"
)

func main() {
	networkFile := flag.String("network-file", "", "Path to the road network GeoJSON file (required)")
	gpsErr := flag.Float64("gps-err", 1e-4, "Emission std-dev")
	radius := flag.Float64("radius", 1e-2, "Candidate search radius, coordinate units")
	knn := flag.Int("knn", 4, "Candidates kept per sample before stickiness")
	maxSpeed := flag.Float64("max-speed", 30.0, "Max speed, coordinate-units per time-unit")
	factor := flag.Float64("factor", 4.0, "Slack multiplier on the max-gps-distance gate")
	reverseTolerance := flag.Float64("reverse-tolerance", 4.0, "Backward jitter tolerance on a shared edge")
	flag.Parse()

	if *networkFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: stmatch --network-file <network.geojson> [flags] <trajectory.geojson|trajectory.wkt>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: stmatch --network-file <network.geojson> [flags] <trajectory.geojson|trajectory.wkt>")
		os.Exit(1)
	}
	trajFile := flag.Arg(0)

	start := time.Now()

	log.Printf("Loading road network from %s...", *networkFile)
	nf, err := os.Open(*networkFile)
	if err != nil {
		log.Fatalf("Failed to open network file: %v", err)
	}
	n, err := network.Load(nf)
	nf.Close()
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

	log.Printf("Loading trajectory from %s...", trajFile)
	tf, err := os.Open(trajFile)
	if err != nil {
		log.Fatalf("Failed to open trajectory file: %v", err)
	}
	trajectories, err := traj.LoadFile(trajFile, tf)
	tf.Close()
	if err != nil {
		log.Fatalf("Failed to load trajectory: %v", err)
	}
	if len(trajectories) == 0 {
		log.Fatalf("Trajectory file contains no trajectories")
	}

	cfg := mm.Config{
		GPSErr:           *gpsErr,
		Radius:           *radius,
		KNN:              *knn,
		MaxSpeed:         *maxSpeed,
		Factor:           *factor,
		ReverseTolerance: *reverseTolerance,
	}

	results := make([]*mm.MMResult, 0, len(trajectories))
	for i, tr := range trajectories {
		log.Printf("Matching trajectory %d/%d (%d samples)...", i+1, len(trajectories), len(tr))
		result, err := matcher.MatchTrajectory(tr, cfg)
		if err != nil {
			log.Fatalf("Match failed for trajectory %d: %v", i, err)
		}
		results = append(results, result)
	}

	log.Printf("Done in %s", time.Since(start).Round(time.Millisecond))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	var out interface{} = results
	if len(results) == 1 {
		out = results[0]
	}
	if err := enc.Encode(out); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}
