package main

import (
	"flag"
	"log"
	"time"

	"github.com/milk9111/jump/control"
	"github.com/milk9111/jump/geom"
	"github.com/milk9111/jump/physics"
	"github.com/milk9111/jump/scene"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "config file (embedded default.yaml when empty)")
	levelName := flag.String("level", "", "level file or embedded level name, overrides the config")
	seconds := flag.Float64("seconds", 5, "simulated seconds")
	fps := flag.Int("fps", 60, "frames per simulated second")
	right := flag.Bool("right", false, "hold right for the whole run")
	jumpEvery := flag.Float64("jump-every", 0, "press jump every n seconds (0 disables)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	if *fps <= 0 {
		log.Fatalf("invalid -fps %d", *fps)
	}

	s, err := scene.Load(*configPath, *levelName, logger)
	if err != nil {
		log.Fatal(err)
	}

	var contacts, tileContacts int
	s.World.OnCollision(func(b, other *physics.Body, overlap geom.Rect) {
		contacts++
		if other.Tile() != nil {
			tileContacts++
		}
	})

	delta := 1 / float64(*fps)
	frames := int(*seconds * float64(*fps))
	jumpFrames := int(*jumpEvery * float64(*fps))
	start := time.Now()
	for i := 0; i < frames; i++ {
		jump := jumpFrames > 0 && i%jumpFrames == 0
		s.Frame(delta, func(a control.Action) bool {
			switch a {
			case control.Right:
				return *right
			case control.Jump:
				return jump
			}
			return false
		})
	}

	logger.WithFields(logrus.Fields{
		"frames":   frames,
		"contacts": contacts,
		"tiles":    tileContacts,
		"elapsed":  time.Since(start),
	}).Info("jumpsim: done")
	logger.WithFields(scene.Fields(s.Player)).WithField("state", s.Machine.State()).Info("jumpsim: player")
	for _, p := range s.Platforms {
		logger.WithFields(scene.Fields(p.Body)).Info("jumpsim: platform")
	}
}
