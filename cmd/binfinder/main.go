// Command binfinder is the CLI wrapper around the Finder. It can be
// invoked with command-line flags or a JSON configuration file, the same
// pairing cmd/muscato does with its -ConfigFileName flag.
//
// binfinder -InputFile=capture.bin -ResultsFileName=report.json -NumberOfThreads=8
//
// binfinder -ConfigFileName=config.json
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/pkg/profile"

	"github.com/kshedden/binfinder/internal/bytesource"
	"github.com/kshedden/binfinder/internal/extract"
	"github.com/kshedden/binfinder/internal/finder"
	"github.com/kshedden/binfinder/internal/hexdump"
	"github.com/kshedden/binfinder/internal/leftover"
)

func main() {
	ConfigFileName := flag.String("ConfigFileName", "", "JSON file containing configuration parameters")
	InputFile := flag.String("InputFile", "", "Binary file to scan")
	ResultsFileName := flag.String("ResultsFileName", "report.json", "File name for the JSON report")
	MinLengthData := flag.Int("MinLengthData", 0, "Base chunk-size target (test_chunk_size = 5x this)")
	NumberOfThreads := flag.Int("NumberOfThreads", 0, "Initial worker count")
	ValueInRow := flag.Int("ValueInRow", 0, "Scaled to 2*8+1 as the byte-shift/stride-gap search bound")
	LogDir := flag.String("LogDir", "", "Directory for log output (default: stderr)")
	ExtractValues := flag.Bool("ExtractValues", false, "Decode and attach each streak's values before writing the report")
	LeftoversFile := flag.String("LeftoversFile", "", "If set, write the input with discovered streaks blanked out here")
	HexdumpFile := flag.String("HexdumpFile", "", "If set, write a hex dump of the input here")
	CPUProfile := flag.Bool("CPUProfile", false, "Capture CPU profile data")

	flag.Parse()

	var cfg finder.Config
	var err error
	if *ConfigFileName != "" {
		cfg, err = finder.ReadConfig(*ConfigFileName)
		if err != nil {
			panic(err)
		}
	} else {
		cfg = finder.DefaultConfig()
	}

	if *MinLengthData != 0 {
		cfg.MinLengthData = *MinLengthData
	}
	if *NumberOfThreads != 0 {
		cfg.NumberOfThreads = *NumberOfThreads
	}
	if *ValueInRow != 0 {
		cfg.ValueInRow = *ValueInRow
	}
	if *LogDir != "" {
		cfg.LogDir = *LogDir
	}
	if *CPUProfile {
		cfg.CPUProfile = true
	}

	if *InputFile == "" {
		fmt.Fprintln(os.Stderr, "binfinder: -InputFile is required")
		os.Exit(1)
	}

	if cfg.CPUProfile {
		p := profile.Start(profile.ProfilePath("."))
		defer p.Stop()
	}

	logOut := os.Stderr
	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, os.ModePerm); err != nil {
			panic(err)
		}
		fid, err := os.Create(cfg.LogDir + "/binfinder.log")
		if err != nil {
			panic(err)
		}
		defer fid.Close()
		logOut = fid
	}

	run(cfg, *InputFile, *ResultsFileName, *ExtractValues, *LeftoversFile, *HexdumpFile, logOut)
}

func run(cfg finder.Config, inputFile, resultsFile string, extractValues bool, leftoversFile, hexdumpFile string, logOut *os.File) {
	src, err := bytesource.Open(inputFile)
	if err != nil {
		panic(err)
	}
	defer src.Close()

	session, err := finder.NewSession(src, cfg, logOut)
	if err != nil {
		panic(err)
	}

	logger := log.New(logOut, "", log.Ltime)
	logger.Printf("binfinder session %s starting on %s (%d bytes)", session.ID(), inputFile, src.Size())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		logger.Printf("binfinder session %s: interrupt received, finishing current pass", session.ID())
		cancel()
	}()

	if err := session.Run(ctx); err != nil {
		panic(err)
	}

	results := session.Results()
	logger.Printf("binfinder session %s: %d streaks found", session.ID(), len(results))

	if extractValues {
		results = extract.All(src, results)
		session.SetResults(results)
	}

	if err := session.WriteResultsToFile(resultsFile); err != nil {
		panic(err)
	}

	if leftoversFile != "" {
		if err := leftover.Write(leftoversFile, src, results); err != nil {
			logger.Printf("binfinder: leftovers write failed: %v", err)
		}
	}

	if hexdumpFile != "" {
		fid, err := os.Create(hexdumpFile)
		if err != nil {
			logger.Printf("binfinder: hexdump create failed: %v", err)
		} else {
			defer fid.Close()
			if err := hexdump.Dump(fid, src.Window(0, int(src.Size())), 0, hexdump.DefaultBytesPerLine); err != nil {
				logger.Printf("binfinder: hexdump write failed: %v", err)
			}
		}
	}
}
