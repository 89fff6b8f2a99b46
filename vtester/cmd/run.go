package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/sarchlab/vtester/config"
	"github.com/sarchlab/vtester/logging"
	"github.com/sarchlab/vtester/scenario"
	"github.com/sarchlab/vtester/simulation"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml>...",
	Short: "Run scenarios on a virtual tester.",
	Long: `Run scenarios on a virtual tester. Each scenario runs on a fresh ` +
		`tester. Settings come from the .env file and VTESTER_* variables; ` +
		`flags override them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if err := logging.Init(cfg.LogFile, cfg.Verbose); err != nil {
			return err
		}
		defer logging.Close()

		continueOnError, _ := cmd.Flags().GetBool("continue")
		traceLog, _ := cmd.Flags().GetBool("trace-log")
		wait, _ := cmd.Flags().GetBool("wait")

		r := runner{
			cfg:      cfg,
			opts:     scenario.Options{ContinueOnError: continueOnError},
			traceLog: traceLog,
			multiple: len(args) > 1,
			out:      cmd.OutOrStdout(),
		}

		if wait && cfg.Monitor {
			r.wait = waitForInterrupt
		}

		return r.runAll(args)
	},
}

func init() {
	f := runCmd.Flags()
	f.StringSlice("env", nil, "the .env files to load, default .env")
	f.String("tester", "", "the name of the tester")
	f.String("trace-db", "", "record a trace into <path>.sqlite3")
	f.String("trace-clickhouse", "", "record a trace into a ClickHouse DSN")
	f.Bool("trace-log", false, "print clock operations to the log")
	f.String("log-file", "", "also write the log to a rotating file")
	f.BoolP("verbose", "v", false, "log source locations and cycles")
	f.Bool("monitor", false, "serve the tester state over HTTP")
	f.Int("port", 0, "the port of the monitor, random if 0")
	f.Bool("open", false, "open the monitor in a browser")
	f.Bool("wait", false, "keep the monitor up after the last scenario "+
		"until interrupted")
	f.Bool("continue", false, "run the remaining steps after a failure")

	rootCmd.AddCommand(runCmd)
}

// loadConfig applies the flags the user set over the environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFiles, _ := cmd.Flags().GetStringSlice("env")

	cfg, err := config.Load(envFiles...)
	if err != nil {
		return config.Config{}, err
	}

	f := cmd.Flags()

	if f.Changed("tester") {
		cfg.TesterName, _ = f.GetString("tester")
	}

	if f.Changed("trace-db") {
		cfg.TraceDB, _ = f.GetString("trace-db")
	}

	if f.Changed("trace-clickhouse") {
		cfg.ClickHouse, _ = f.GetString("trace-clickhouse")
	}

	if f.Changed("log-file") {
		cfg.LogFile, _ = f.GetString("log-file")
	}

	if f.Changed("verbose") {
		cfg.Verbose, _ = f.GetBool("verbose")
	}

	if f.Changed("monitor") {
		cfg.Monitor, _ = f.GetBool("monitor")
	}

	if f.Changed("port") {
		cfg.MonitorPort, _ = f.GetInt("port")
	}

	if f.Changed("open") {
		cfg.OpenBrowser, _ = f.GetBool("open")
	}

	if cfg.TraceDB != "" && cfg.ClickHouse != "" {
		return config.Config{}, errors.New(
			"cannot trace into both SQLite and ClickHouse")
	}

	if !cfg.Monitor && (cfg.MonitorPort != 0 || cfg.OpenBrowser) {
		return config.Config{}, errors.New(
			"the monitor port and browser need the monitor")
	}

	return cfg, nil
}

type runner struct {
	cfg      config.Config
	opts     scenario.Options
	traceLog bool
	multiple bool
	out      io.Writer
	wait     func(*simulation.Simulation)
}

func (r runner) runAll(paths []string) error {
	failed := 0

	for i, path := range paths {
		last := i == len(paths)-1

		if err := r.run(path, last); err != nil {
			log.Printf("%s: %v", path, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(paths))
	}

	return nil
}

func (r runner) run(path string, last bool) error {
	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}

	sim, err := r.builder(sc).Build()
	if err != nil {
		return err
	}
	defer sim.Close()

	if url := sim.MonitorURL(); url != "" {
		log.Printf("Monitoring %s at %s", sc.Name, url)
	}

	report, runErr := sim.Run(sc, r.opts)

	fmt.Fprintln(r.out, report)

	for _, f := range report.Failures {
		fmt.Fprintf(r.out, "  %v\n", f)
	}

	if t := sim.DBTracer(); t != nil {
		clockEvents, timesetEvents := t.NumRecords()
		log.Printf("Trace of %s: %d clock events, %d timeset events %s",
			sc.Name, clockEvents, timesetEvents, traceTarget(sim))
	}

	if last && r.wait != nil {
		r.wait(sim)
	}

	return runErr
}

func (r runner) builder(sc *scenario.Scenario) simulation.Builder {
	b := simulation.MakeBuilder().WithTesterName(r.cfg.TesterName)

	if sc.Tester != "" {
		b = b.WithTesterName(sc.Tester)
	}

	if r.cfg.TraceDB != "" {
		path := r.cfg.TraceDB
		if r.multiple {
			path += "_" + sc.Name
		}

		b = b.WithTraceDB(path)
	}

	if r.cfg.ClickHouse != "" {
		b = b.WithClickHouseTrace(r.cfg.ClickHouse).WithUniqueTraceIDs()
	}

	if r.traceLog {
		b = b.WithLogTracer(r.cfg.Verbose)
	}

	if r.cfg.Monitor {
		b = b.WithMonitor().WithMonitorPort(r.cfg.MonitorPort)

		if r.cfg.OpenBrowser {
			b = b.WithBrowser()
		}
	}

	return b
}

func traceTarget(sim *simulation.Simulation) string {
	if file := sim.TraceFile(); file != "" {
		return "in " + file
	}

	return "sent to ClickHouse"
}

func waitForInterrupt(sim *simulation.Simulation) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("Monitor is up at %s, press Ctrl-C to exit", sim.MonitorURL())
	<-ctx.Done()
}
