/*
NAME
  main.go

DESCRIPTION
  main.go is the extractor's CLI entry point.

AUTHOR
  pyisle contributors

LICENSE
  Part of pyisle (github.com/floriandotorg/pyisle), an independent
  reimplementation not affiliated with or endorsed by the original
  game's publishers.
*/

// Package main is the extractor's CLI entry point: it parses flags into
// a config.Config and drives a single batch run over a flat list of SI
// objects and a WDB model, dispatching each object to the codec its
// file type names and writing the result under OutputPath.
//
// This command does not implement ISO 9660 enumeration, SI container
// parsing, or SMK demuxing: those remain the external interfaces this
// module treats as contracts (model/si, model/wdb), and the Extractor
// type below only shows how the pieces already built compose.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/floriandotorg/pyisle/codec/bmp"
	"github.com/floriandotorg/pyisle/codec/flc"
	"github.com/floriandotorg/pyisle/codec/png"
	"github.com/floriandotorg/pyisle/codec/wav"
	"github.com/floriandotorg/pyisle/config"
	"github.com/floriandotorg/pyisle/container/avi"
	"github.com/floriandotorg/pyisle/container/glb"
	"github.com/floriandotorg/pyisle/model/si"
	"github.com/floriandotorg/pyisle/model/wdb"
	"github.com/floriandotorg/pyisle/schedule"
	"github.com/floriandotorg/pyisle/scene"
)

const (
	logMaxSize   = 50 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
)

// Extractor dispatches one decoded si.Object to the codec its FileType
// names and writes the result to a file under dir named name plus the
// codec's natural extension.
type Extractor struct {
	Dir string
	Log logging.Logger
}

// ExtractObject writes obj's re-encoded bytes to e.Dir/name.<ext>. SMK
// objects are not handled here: demuxing one into model/smk.Video
// happens outside this module, same as the FLC decoder's frame buffer
// when no all_lods / passthrough distinction is needed.
func (e *Extractor) ExtractObject(name string, obj *si.Object) error {
	switch obj.FileType {
	case si.WAV:
		out, err := wav.Write(obj)
		if err != nil {
			return err
		}
		return e.write(name+".wav", out)

	case si.STL:
		return errors.New("STL objects require external dimensions and are not handled by ExtractObject")

	case si.FLC:
		out, err := flc.Passthrough(obj)
		if err != nil {
			return err
		}
		return e.write(name+".flc", out)

	case si.SMK:
		e.Log.Warning("SMK objects are opaque to this module; skipping", "name", name)
		return nil

	default:
		return errors.Errorf("unknown file type %v for object %q", obj.FileType, name)
	}
}

// ExtractBitmap re-encodes a raw top-down RGB buffer as both BMP and PNG.
func (e *Extractor) ExtractBitmap(name string, width, height int, rgb []byte) error {
	bmpOut, err := bmp.EncodeRGB(width, height, rgb)
	if err != nil {
		return err
	}
	if err := e.write(name+".bmp", bmpOut); err != nil {
		return err
	}

	pngOut, err := png.Encode(width, height, rgb, png.RGB)
	if err != nil {
		return err
	}
	if err := e.write(name+".png", pngOut); err != nil {
		return err
	}
	return nil
}

// ExtractAnimation muxes src (an flc.Stream or model/smk.Video) as AVI.
func (e *Extractor) ExtractAnimation(name string, src avi.Source) error {
	f, err := os.Create(filepath.Join(e.Dir, name+".avi"))
	if err != nil {
		return errors.Wrap(err, "creating AVI output file")
	}
	defer f.Close()
	return avi.Write(f, src)
}

// ExtractModel composes model into a GLB scene and writes it to
// e.Dir/name.glb.
func (e *Extractor) ExtractModel(name string, model *wdb.Model, textures *wdb.WDB, allLODs bool) error {
	var w glb.Writer
	if err := scene.Compose(&w, model, textures, allLODs, e.Log); err != nil {
		return err
	}
	out, err := w.Build()
	if err != nil {
		return err
	}
	return e.write(name+".glb", out)
}

func (e *Extractor) write(name string, data []byte) error {
	return os.WriteFile(filepath.Join(e.Dir, name), data, 0o644)
}

func main() {
	inputPath := flag.String("input", "", "input SI/WDB file or directory")
	outputPath := flag.String("output", "out", "output directory for extracted assets")
	allLODs := flag.Bool("all-lods", false, "emit every LOD instead of only the finest")
	workers := flag.Int("workers", 1, "number of balanced chunks to partition the work set into")
	reportPath := flag.String("report", "", "optional path for a chunk-weight bar chart PNG")
	logPath := flag.String("log", "extract.log", "log file path")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "extract: -input is required")
		os.Exit(2)
	}

	fileLog := &lumberjack.Logger{
		Filename:   *logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logging.Info, io.MultiWriter(fileLog, os.Stderr), true)

	cfg := config.Config{
		InputPath:  *inputPath,
		OutputPath: *outputPath,
		AllLODs:    *allLODs,
		Workers:    *workers,
		ReportPath: *reportPath,
		Logger:     log,
		LogLevel:   logging.Info,
	}

	if err := os.MkdirAll(cfg.OutputPath, 0o755); err != nil {
		log.Fatal("could not create output directory", "error", err)
	}

	log.Info("extractor starting", "input", cfg.InputPath, "output", cfg.OutputPath, "workers", cfg.Workers)

	if err := run(&cfg); err != nil {
		log.Fatal("extraction failed", "error", err)
	}
}

// run is the placeholder batch driver: real enumeration of SI/WDB
// objects from cfg.InputPath is outside this module's scope (§1), so
// this only demonstrates scheduling an empty work set through
// schedule.BalancedChunks to keep the wiring exercised end to end.
func run(cfg *config.Config) error {
	var objects []*si.Object
	chunks := schedule.BalancedChunks(objects, cfg.Workers)

	extractor := &Extractor{Dir: cfg.OutputPath, Log: cfg.Logger}
	for _, chunk := range chunks {
		for i, obj := range chunk {
			name := fmt.Sprintf("object-%04d", i)
			if err := extractor.ExtractObject(name, obj); err != nil {
				cfg.Logger.Warning("skipping object after extraction error", "name", name, "error", err)
				continue
			}
		}
	}

	if cfg.ReportPath != "" {
		f, err := os.Create(cfg.ReportPath)
		if err != nil {
			return errors.Wrap(err, "creating report file")
		}
		defer f.Close()
		if err := schedule.WriteReport(f, chunks); err != nil {
			return err
		}
	}

	return nil
}
