package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "config file (embedded default.yaml when empty)")
	levelName := flag.String("level", "", "level file or embedded level name, overrides the config")
	debug := flag.Bool("debug", false, "draw collision overlays")
	watch := flag.Bool("watch", true, "reload when the config or its scripts change")
	zoom := flag.Float64("zoom", 2, "camera zoom")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("jump")

	game, err := NewGame(Options{
		ConfigPath: *configPath,
		Level:      *levelName,
		Debug:      *debug,
		Watch:      *watch,
		Zoom:       *zoom,
		Log:        logger,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
