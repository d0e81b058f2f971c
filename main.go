package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/aunum/log"
	"github.com/logrusorgru/aurora"

	"github.com/golearn/duelingdqn/experiment"
	"github.com/golearn/duelingdqn/experiment/tracker"
)

func main() {
	var (
		seed       = flag.Uint64("seed", 192382, "seed for every random source")
		configFile = flag.String("config", "", "JSON file overriding the default configuration")
		frameDir   = flag.String("frames", "", "directory to write evaluation frames to")
		dbFile     = flag.String("db", "", "SQLite file to record episodes in")
		curveFile  = flag.String("curve", "", "learning curve output (.png or .html)")
		lengthFile = flag.String("lengths", "", "gob file to save training episode lengths to")
	)
	flag.Parse()

	config := experiment.DefaultConfig(*seed)
	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			log.Fatalf("could not read config: %v", err)
		}
		if err := json.Unmarshal(data, &config); err != nil {
			log.Fatalf("could not decode config: %v", err)
		}
	}

	var trackers []tracker.Tracker
	if *dbFile != "" {
		db, err := tracker.NewSQLite(context.Background(), *dbFile,
			"dueling-dqn-cartpole")
		if err != nil {
			log.Fatalf("could not open episode store: %v", err)
		}
		log.Infof("recording episodes of run %v in %v", db.Run(), *dbFile)
		trackers = append(trackers, db)
	}
	if *curveFile != "" {
		curve, err := tracker.NewCurve(*curveFile)
		if err != nil {
			log.Fatalf("could not create learning curve: %v", err)
		}
		trackers = append(trackers, curve)
	}
	if *lengthFile != "" {
		trackers = append(trackers,
			tracker.NewEpisodeLength(tracker.Training, *lengthFile))
	}

	trainer, err := config.CreateTrainer(*seed, *frameDir, trackers...)
	if err != nil {
		log.Fatalf("could not create trainer: %v", err)
	}

	result, err := trainer.Run()
	if saveErr := trainer.Save(); saveErr != nil {
		log.Warningf("could not save tracked data: %v", saveErr)
	}
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}

	log.Successf("%v after %d episodes  |  evaluation average reward: %v",
		result.Outcome, result.Episodes,
		aurora.Bold(aurora.Cyan(result.EvalAverage)))
}
