package main

import (
	"flag"
	"os"

	"github.com/dwolgast/matchlog/internal/config"
	"github.com/dwolgast/matchlog/internal/core/discipline"
	"github.com/dwolgast/matchlog/internal/core/engine"
	"github.com/dwolgast/matchlog/internal/core/match"
	"github.com/dwolgast/matchlog/internal/events"
	"github.com/dwolgast/matchlog/internal/store"
	"github.com/dwolgast/matchlog/internal/telemetry"
	"github.com/dwolgast/matchlog/internal/worksheet"
)

func main() {
	cfg := config.Load()

	dbPath := flag.String("db", cfg.DBPath, "match database path")
	rulesPath := flag.String("rules", cfg.RulesPath, "officiating rules catalog")
	summary := flag.Bool("summary", false, "print the score line")
	transcript := flag.Bool("transcript", false, "print the full match transcript")
	board := flag.Bool("board", false, "print the penalty board and injury list")
	check := flag.Bool("check", false, "audit the worksheet for export readiness")
	flag.Parse()

	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	rules, err := config.LoadRules(*rulesPath)
	if err != nil {
		telemetry.Errorf("Failed to load rules catalog: %v", err)
		os.Exit(1)
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		telemetry.Errorf("Failed to open match store: %v", err)
		os.Exit(1)
	}
	defer st.Close()

	bus := events.NewBus()
	bus.Subscribe(events.TypeSignalRaised, printSignal)
	bus.Subscribe(events.TypeManualReleaseRequired, printManualRelease)

	eng, err := engine.Rehydrate(rules, bus, st)
	if err != nil {
		telemetry.Errorf("Failed to restore match state: %v", err)
		os.Exit(1)
	}

	info := eng.Info()
	log := eng.Log()
	out := os.Stdout

	if !*transcript && !*board && !*check {
		*summary = true
	}

	if *summary {
		worksheet.Header(out, info)
		worksheet.Summary(out, info, log)
	}
	if *transcript {
		worksheet.Header(out, info)
		worksheet.Transcript(out, info, log)
		for _, team := range []match.Team{match.TeamAway, match.TeamHome} {
			worksheet.FoulSummary(out, info, log, team, *eng.Roster(team))
		}
	}
	if *board {
		worksheet.Board(out, info, log)
	}
	if *check {
		issues := worksheet.Audit(log)
		if len(issues) == 0 {
			telemetry.Infof("Worksheet is export-ready")
			return
		}
		for _, issue := range issues {
			telemetry.Warnf("Blocking export: %s", issue)
		}
		os.Exit(1)
	}
}

func printSignal(n events.Notification) error {
	sig, ok := n.Payload.(discipline.Signal)
	if !ok {
		return nil
	}
	telemetry.Warnf("[%s] %s %s: %s", sig.Severity, sig.Team, sig.Subject.Label(), sig.Message)
	return nil
}

func printManualRelease(n events.Notification) error {
	telemetry.Warnf("Power-play goal for %s matched no open penalty — resolve the release manually", n.Team)
	return nil
}
