package main

import (
	"flag"
	"log"
	"sort"

	"github.com/swdee/go-tagtrack/record"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	csvFile := flag.String("i", "poses.csv", "Pose log CSV file written by the tagtrack demo")
	outFile := flag.String("o", "trajectory.png", "Output image file, format chosen by extension [png|svg|pdf]")
	id := flag.Int("id", -1, "Only plot the given marker id")

	flag.Parse()

	entries, err := record.ReadCSVFile(*csvFile)

	if err != nil {
		log.Fatalf("Error reading pose log: %v", err)
	}

	tracks := record.Tracks(entries)

	if *id >= 0 {
		entries = tracks[*id]
	}

	ids := make([]int, 0, len(tracks))
	for tid := range tracks {
		ids = append(ids, tid)
	}
	sort.Ints(ids)

	for _, tid := range ids {
		if *id >= 0 && tid != *id {
			continue
		}

		track := tracks[tid]
		first, last := track[0], track[len(track)-1]

		log.Printf("Marker %d: %d poses, start (%.3g, %.3g) end (%.3g, %.3g)",
			tid, len(track), first.X, first.Y, last.X, last.Y)
	}

	if err := record.PlotTrajectory(entries, *outFile); err != nil {
		log.Fatalf("Error plotting trajectory: %v", err)
	}

	log.Printf("Saved trajectory plot to %s", *outFile)
}
