// orbittool is a CLI utility for inspecting orbit paths, generated
// satellite populations and model part classification.
package main

import (
	"flag"
	"fmt"
	gomath "math"
	"math/rand"
	"os"

	"github.com/Faultbox/orbitfx/internal/assets"
	"github.com/Faultbox/orbitfx/internal/config"
	"github.com/Faultbox/orbitfx/internal/engine/material"
	"github.com/Faultbox/orbitfx/internal/engine/path"
	"github.com/Faultbox/orbitfx/internal/scene"
	"github.com/Faultbox/orbitfx/pkg/formats"
	"github.com/Faultbox/orbitfx/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "sample", "s":
		cmdSample(args)
	case "population", "pop":
		cmdPopulation(args)
	case "parts":
		cmdParts(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`orbittool - orbit path and satellite model utility

Usage:
  orbittool <command> [options]

Commands:
  sample <orbit|electron|spin|float> [flags]  Print sampled poses over time
  population [flags]                          Print a generated population
  parts <model.obj> [model.mtl]               Classify model parts by category

Examples:
  orbittool sample orbit -speed 1 -radius 2 -t1 6.28 -n 8
  orbittool sample electron -speed 0.8 -radius 2.75
  orbittool population -seed 42 -count 15
  orbittool population -config config.yaml
  orbittool parts assets/models/satellite/Satellite.obj`)
}

func cmdSample(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: orbittool sample <orbit|electron|spin|float> [flags]")
		os.Exit(1)
	}
	kind := args[0]

	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	speed := fs.Float64("speed", 1, "Angular speed, radians/sec")
	radius := fs.Float64("radius", 2, "Path radius")
	incl := fs.Float64("inclination", 0, "Orbit inclination, radians")
	phase := fs.Float64("phase", 0, "Orbit phase, radians")
	t0 := fs.Float64("t0", 0, "First sample time, seconds")
	t1 := fs.Float64("t1", 2*gomath.Pi, "Last sample time, seconds")
	n := fs.Int("n", 9, "Number of samples")
	fs.Parse(args[1:])

	var s path.Sampler
	switch kind {
	case "orbit":
		s = path.OrbitSampler{Params: path.OrbitParams{
			Speed: *speed, Radius: *radius, Inclination: *incl, Phase: *phase,
		}}
	case "electron":
		s = path.ElectronSampler{Speed: *speed, Radius: *radius}
	case "spin":
		s = path.SpinSampler{Rate: *speed, Axis: math.Up}
	case "float":
		s = path.FloatSampler{Params: path.FloatParams{Speed: *speed, RotationIntensity: 0.5, FloatIntensity: 0.5}}
	default:
		fmt.Fprintf(os.Stderr, "Unknown path: %s\n", kind)
		os.Exit(1)
	}
	if *n < 1 {
		fmt.Fprintln(os.Stderr, "Error: -n must be positive")
		os.Exit(1)
	}

	fmt.Printf("%-10s %10s %10s %10s   %s\n", "t", "x", "y", "z", "rotation (x y z w)")
	for i := 0; i < *n; i++ {
		t := *t0
		if *n > 1 {
			t += (*t1 - *t0) * float64(i) / float64(*n-1)
		}
		p := s.Sample(t)
		q := p.Rotation
		fmt.Printf("%-10.4f %10.4f %10.4f %10.4f   %.4f %.4f %.4f %.4f\n",
			t, p.Position.X, p.Position.Y, p.Position.Z, q.X, q.Y, q.Z, q.W)
	}
}

func cmdPopulation(args []string) {
	fs := flag.NewFlagSet("population", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Config file to read the population settings from")
	seed := fs.Int64("seed", 1, "Random seed")
	count := fs.Int("count", -1, "Number of satellites (-1 = from config)")
	fs.Parse(args)

	base := config.Default()
	if *cfgPath != "" {
		var err error
		if base, err = config.LoadFile(*cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	cfg := base.Globe.Population
	if *count >= 0 {
		cfg.Count = *count
	}
	pop, err := scene.GeneratePopulation(rand.New(rand.NewSource(*seed)), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seed:       %d\n", *seed)
	fmt.Printf("Satellites: %d\n", len(pop))
	fmt.Println()
	fmt.Printf("%-4s %-8s %8s %8s %12s %8s\n", "#", "tint", "speed", "radius", "inclination", "phase")
	for i, s := range pop {
		o := s.Orbit
		fmt.Printf("%-4d %-8s %8.4f %8.4f %12.4f %8.4f\n", i, s.Hex, o.Speed, o.Radius, o.Inclination, o.Phase)
	}
}

func cmdParts(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: orbittool parts <model.obj> [model.mtl]")
		os.Exit(1)
	}

	obj, err := formats.LoadOBJ(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	var lib *formats.MTL
	if len(args) > 1 {
		if lib, err = formats.LoadMTL(args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	model, err := assets.BuildModel(args[0], obj, lib)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	catalog := material.SatelliteCatalog()
	fmt.Printf("Model:     %s\n", args[0])
	fmt.Printf("Triangles: %d\n", obj.TriangleCount())
	fmt.Println()
	fmt.Printf("%-32s %-10s %s\n", "part", "category", "note")

	unmatched := 0
	for _, p := range model.Leaves() {
		cat, matches := catalog.Classify(p.Name)
		label, note := cat.Label, ""
		switch {
		case matches == 0:
			label, note = "-", "neutral fallback"
			unmatched++
		case matches > 1:
			note = fmt.Sprintf("ambiguous (%d categories)", matches)
		case cat.Tinted:
			note = "tinted"
		}
		fmt.Printf("%-32s %-10s %s\n", p.Name, label, note)
	}
	if unmatched > 0 {
		fmt.Printf("\n%d part(s) match no category\n", unmatched)
	}
}
