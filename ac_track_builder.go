package main

import (
	"flag"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ruggierom/ac_track_builder/acmod"
	"github.com/ruggierom/ac_track_builder/ailine"
	"github.com/ruggierom/ac_track_builder/config"
	"github.com/ruggierom/ac_track_builder/kn5"
	"github.com/ruggierom/ac_track_builder/scene"
	"github.com/ruggierom/ac_track_builder/web"
)

func main() {
	var scenePath, cfgPath, outDir, name, addr, staticDir, encoding string
	var serve bool
	flag.StringVar(&scenePath, "scene", "", "Path to the authored track scene (.gltf or .glb)")
	flag.StringVar(&cfgPath, "config", "track.yaml", "Track config file")
	flag.StringVar(&outDir, "out", "mod", "Mod output root directory")
	flag.StringVar(&name, "name", "", "Track name override, defaults to the scene file name")
	flag.StringVar(&addr, "i", ":8000", "Address of the inspection server")
	flag.StringVar(&staticDir, "web", "", "Optional static files directory for the inspection server")
	flag.BoolVar(&serve, "serve", false, "Serve already built artifacts instead of building")
	flag.StringVar(&encoding, "encoding", "", "Charmap for non utf-8 strings in foreign kn5 files")
	flag.Parse()

	if encoding != "" {
		if err := config.SetEncoding(encoding); err != nil {
			logrus.Fatalf("%v (known: %v)", err, config.ListEncodings())
		}
	}

	if scenePath == "" && name == "" {
		flag.PrintDefaults()
		return
	}
	if name == "" {
		base := filepath.Base(scenePath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	modDir := filepath.Join(outDir, name)
	kn5Path := filepath.Join(modDir, name+".kn5")
	aiPath := filepath.Join(modDir, "ai", "fast_lane.ai")

	if serve {
		if err := web.StartServer(addr, kn5Path, aiPath, staticDir); err != nil {
			logrus.Fatal(err)
		}
		return
	}

	cfg, err := config.LoadTrack(cfgPath)
	if err != nil {
		logrus.Fatal(err)
	}

	logrus.Infof("loading scene %q", scenePath)
	sc, err := scene.LoadGLTF(scenePath)
	if err != nil {
		logrus.Fatal(err)
	}
	logrus.Infof("scene: %d meshes, %d markers", len(sc.Meshes), len(sc.Markers))

	logrus.Infof("[1/3] mod folder %q", modDir)
	if err := acmod.Setup(cfg, modDir); err != nil {
		logrus.Fatal(err)
	}
	if err := acmod.CopyArtwork(filepath.Dir(scenePath), modDir); err != nil {
		logrus.Fatal(err)
	}

	logrus.Infof("[2/3] scene export %q", kn5Path)
	res, err := kn5.ExportFile(kn5Path, sc, kn5.ExportParams{
		Name:          name,
		BoxHalfExtent: float32(cfg.Geometry.MarkerHalfExtent),
	})
	if err != nil {
		logrus.Fatal(err)
	}
	logrus.Infof("exported %d meshes, %d markers, %d materials, %d textures",
		res.MeshNodes, res.MarkerNodes, res.Materials, res.Textures)
	for _, warning := range res.Warnings {
		logrus.Warn(warning)
	}

	logrus.Infof("[3/3] racing line %q", aiPath)
	line, err := ailine.Extract(sc, ailine.Params{
		DefaultSpeed:   cfg.AILine.DefaultSpeed,
		MinCornerSpeed: cfg.AILine.MinCornerSpeed,
		RoadObject:     cfg.AILine.RoadObject,
	})
	if err != nil {
		logrus.Fatal(err)
	}
	if err := line.WriteFile(aiPath); err != nil {
		logrus.Fatal(err)
	}
	logrus.Infof("racing line: %d points, %.1f m", len(line.Points), line.Length())

	logrus.Infof("build completed in %q", modDir)
}
