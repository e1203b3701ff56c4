package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/san-kum/gravquad/internal/api"
	"github.com/san-kum/gravquad/internal/config"
	"github.com/san-kum/gravquad/internal/engine"
	"github.com/san-kum/gravquad/internal/export"
	"github.com/san-kum/gravquad/internal/metrics"
	"github.com/san-kum/gravquad/internal/optim"
	"github.com/san-kum/gravquad/internal/physics"
	"github.com/san-kum/gravquad/internal/sim"
	"github.com/san-kum/gravquad/internal/spatial"
	"github.com/san-kum/gravquad/internal/storage"
	"github.com/san-kum/gravquad/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string

	numBodies  int
	seed       uint64
	gravity    float64
	workers    int
	capacity   int
	maxDepth   int
	steps      int
	indexEvery int
	frameRate  int
	addr       string
	numRuns    int

	atStep    int
	output    string
	scale     float64
	highlight int
	sizes     string

	capacities string
	depths     string
)

func main() {
	// a missing .env is normal
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "gravquad",
		Short: "2d gravity sandbox with quadtree closest-pair queries",
		RunE:  runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravquad", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().IntVar(&numBodies, "bodies", config.DefaultBodies, "number of bodies")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", config.DefaultSeed, "random seed")
	rootCmd.PersistentFlags().Float64Var(&gravity, "g", physics.DefaultG, "gravitational constant")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "goroutines for the force pass (0 or 1 = serial)")
	rootCmd.PersistentFlags().IntVar(&capacity, "capacity", spatial.DefaultCapacity, "quadtree leaf capacity")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", spatial.DefaultMaxDepth, "quadtree depth limit")
	rootCmd.PersistentFlags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate for live, menu and serve")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless and record the run",
		RunE:  runSimulation,
	}
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps to run")
	runCmd.Flags().IntVar(&indexEvery, "index-every", config.DefaultIndexEvery, "cross-check the quadtree every n steps (0 = never)")
	runCmd.Flags().IntVar(&numRuns, "runs", 1, "independent runs with consecutive seeds")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the world in the terminal",
		RunE:  runLive,
	}

	menuCmd := &cobra.Command{
		Use:   "menu",
		Short: "pick a preset interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return viz.RunInteractive(cfg)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run the world behind an HTTP and WebSocket API",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [png|svg]",
		Short: "render the world after some steps",
		Args:  cobra.ExactArgs(1),
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().IntVar(&atStep, "at", 100, "steps to run before rendering")
	snapshotCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default snapshot.<format>)")
	snapshotCmd.Flags().Float64Var(&scale, "scale", 1, "pixels per arena unit")
	snapshotCmd.Flags().IntVar(&highlight, "highlight", -1, "body id to outline")

	nearestCmd := &cobra.Command{
		Use:   "nearest",
		Short: "compare quadtree and exhaustive nearest neighbours",
		RunE:  runNearest,
	}
	nearestCmd.Flags().IntVar(&atStep, "at", 100, "steps to run before querying")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time exhaustive and quadtree closest-pair searches",
		RunE:  runBench,
	}
	benchCmd.Flags().StringVar(&sizes, "sizes", "100,500,1000,2000", "comma separated body counts")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search quadtree capacity and depth for the configured world",
		RunE:  runTune,
	}
	tuneCmd.Flags().IntVar(&atStep, "at", 100, "steps to run before timing")
	tuneCmd.Flags().StringVar(&capacities, "capacities", "1,2,4,8,16", "comma separated leaf capacities")
	tuneCmd.Flags().StringVar(&depths, "depths", "6,8,10,12", "comma separated depth limits")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <run_id>.json)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBODIES\tG\tMASS\tWORKERS")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%g\t%g-%g\t%d\n", name, cfg.Bodies, cfg.Physics.G,
					cfg.Physics.MassMin, cfg.Physics.MassMax, cfg.Physics.Workers)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, menuCmd, serveCmd, snapshotCmd, nearestCmd, benchCmd,
		tuneCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers defaults, preset, config file, environment and finally
// any flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	cfg.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("bodies") {
		cfg.Bodies = numBodies
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("g") {
		cfg.Physics.G = gravity
	}
	if flags.Changed("workers") {
		cfg.Physics.Workers = workers
	}
	if flags.Changed("capacity") {
		cfg.Index.Capacity = capacity
	}
	if flags.Changed("max-depth") {
		cfg.Index.MaxDepth = maxDepth
	}
	if flags.Changed("fps") {
		cfg.Run.FPS = frameRate
	}
	if flags.Changed("steps") {
		cfg.Run.Steps = steps
	}
	if flags.Changed("index-every") {
		cfg.Run.IndexEvery = indexEvery
	}
	if flags.Changed("addr") {
		cfg.Server.Addr = addr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func presetName() string {
	if preset != "" {
		return preset
	}
	return "default"
}

func newWorld(cfg *config.Config) (*physics.World, error) {
	return physics.New(cfg.Bodies, cfg.Params())
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func simConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Steps:         cfg.Run.Steps,
		IndexEvery:    cfg.Run.IndexEvery,
		IndexOptions:  cfg.IndexOptions(),
		ValidateState: true,
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if numRuns < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", numRuns)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %d bodies for %d steps (%d run(s))...\n", cfg.Bodies, cfg.Run.Steps, numRuns)
	start := time.Now()

	var results []*sim.Result
	if numRuns == 1 {
		world, err := newWorld(cfg)
		if err != nil {
			return err
		}
		s := sim.New(world)
		for _, m := range metrics.Standard() {
			s.AddMetric(m)
		}
		result, err := s.Run(ctx, simConfig(cfg))
		if err != nil && result == nil {
			return err
		}
		if err != nil {
			fmt.Printf("stopped early: %v\n", err)
		}
		results = append(results, result)
	} else {
		results, err = sim.NewEnsemble(cfg.Bodies, cfg.Params(), numRuns, cfg.Seed).
			WithMetrics(metrics.Standard).
			Run(ctx, simConfig(cfg))
		if err != nil {
			return err
		}
	}

	elapsed := time.Since(start)
	fmt.Printf("completed in %v\n", elapsed)

	for i, result := range results {
		params := cfg.Params()
		params.Seed = cfg.Seed + uint64(i)

		runID, err := st.Save(presetName(), cfg.Bodies, params, result)
		if err != nil {
			return err
		}

		fmt.Printf("\nrun id: %s\n", runID)
		fmt.Printf("steps: %d\n", result.StepsTaken)
		fmt.Printf("energy drift: %.6f\n", result.EnergyDrift)
		if result.IndexChecks > 0 {
			fmt.Printf("index checks: %d (%d mismatches)\n", result.IndexChecks, result.IndexMismatches)
		}
		for _, e := range result.Errors {
			fmt.Printf("error: %v\n", e)
		}
		fmt.Println("metrics:")
		names := make([]string, 0, len(result.Metrics))
		for name := range result.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
		}
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	world, err := newWorld(cfg)
	if err != nil {
		return err
	}
	return viz.Run(world, presetName(), viz.Options{FPS: cfg.Run.FPS, Index: cfg.IndexOptions()})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	world, err := newWorld(cfg)
	if err != nil {
		return err
	}

	eng, err := engine.New(world, engine.Options{
		FPS:           cfg.Run.FPS,
		Index:         cfg.IndexOptions(),
		ValidateState: true,
	})
	if err != nil {
		return err
	}
	eng.OnTick = api.ObserveTick
	eng.OnReset = func() { log.Printf("world reset") }

	ctx, cancel := signalContext()
	defer cancel()

	eng.Start(ctx)
	defer eng.Stop()

	if cfg.Server.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.Server.MetricsAddr)
	}

	srv := api.NewServer(eng, api.ServerConfig{
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimit: api.RateLimitConfig{
			RequestsPerSecond: cfg.Server.ResetRPS,
			Burst:             cfg.Server.ResetBurst,
		},
	})
	if err := srv.Start(ctx, cfg.Server.Addr); err != nil {
		return err
	}

	select {
	case <-eng.Done():
		if err := eng.Err(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	default:
	}
	return nil
}

// serveMetrics exposes /metrics on its own listener for scrapers that
// should not reach the public API.
func serveMetrics(ctx context.Context, metricsAddr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	log.Printf("metrics listening on %s", metricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("metrics server: %v", err)
	}
}

// stepWorld builds a world from cfg and advances it n steps.
func stepWorld(cfg *config.Config, n int) (*physics.World, error) {
	if n < 0 {
		return nil, fmt.Errorf("step count must be non-negative, got %d", n)
	}
	world, err := newWorld(cfg)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		world.Step()
	}
	return world, nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(args[0])
	if format != "png" && format != "svg" {
		return fmt.Errorf("unknown format %q (want png or svg)", args[0])
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	world, err := stepWorld(cfg, atStep)
	if err != nil {
		return err
	}

	path := output
	if path == "" {
		path = "snapshot." + format
	}
	opts := export.DefaultOptions()
	opts.Scale = scale
	opts.Highlight = highlight

	snap := world.Snapshot()
	if format == "png" {
		err = export.SavePNG(path, snap, opts)
	} else {
		err = os.WriteFile(path, []byte(export.WorldSVG(snap, opts)), 0644)
	}
	if err != nil {
		return err
	}

	fmt.Printf("wrote %s (step %d", path, snap.Step)
	if snap.HasPair {
		fmt.Printf(", closest %d-%d at %.2fpx", snap.Pair.I, snap.Pair.J, snap.MinDistance)
	}
	fmt.Println(")")
	return nil
}

func bodyItems(bodies []physics.Body) []spatial.Item {
	items := make([]spatial.Item, len(bodies))
	for i, b := range bodies {
		items[i] = spatial.Item{ID: b.ID, Pos: b.Pos}
	}
	return items
}

func runNearest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	world, err := stepWorld(cfg, atStep)
	if err != nil {
		return err
	}

	ix, err := spatial.Build(world, cfg.IndexOptions())
	if err != nil {
		return err
	}
	items := bodyItems(world.Bodies())

	tree := ix.Tree()
	fmt.Printf("step %d: %d bodies, %d subdivisions, depth %d\n\n", world.Steps(), ix.Len(), tree.Subdivisions(), tree.Depth())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tINDEX NN\tDIST\tBRUTE NN\tDIST\tMATCH")
	mismatches := 0
	for _, it := range items {
		nb, okIdx := ix.NearestNeighbor(it.ID)
		bf, okBrute := spatial.BruteForceNearest(items, it.ID)
		if !okIdx || !okBrute {
			fmt.Fprintf(w, "%d\t-\t-\t-\t-\t%v\n", it.ID, okIdx == okBrute)
			continue
		}
		match := nb.Distance == bf.Distance
		if !match {
			mismatches++
		}
		fmt.Fprintf(w, "%d\t%d\t%.4f\t%d\t%.4f\t%v\n", it.ID, nb.ID, nb.Distance, bf.ID, bf.Distance, match)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if p, ok := ix.ClosestPair(); ok {
		bp, _ := spatial.BruteForceClosestPair(items)
		fmt.Printf("\nclosest pair: index %d-%d at %.4f, exhaustive %d-%d at %.4f\n", p.I, p.J, p.Distance, bp.I, bp.J, bp.Distance)
	}
	if mismatches > 0 {
		return fmt.Errorf("%d nearest-neighbour mismatches", mismatches)
	}
	return nil
}

func parseSizes(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil || n < 2 {
			return nil, fmt.Errorf("invalid size %q", f)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no sizes given")
	}
	return out, nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	counts, err := parseSizes(sizes)
	if err != nil {
		return err
	}

	const reps = 5

	fmt.Printf("benchmarking closest pair (%d reps each)...\n\n", reps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODIES\tSTEP\tEXHAUSTIVE\tQUADTREE\tSPEEDUP\tAGREE")

	for _, n := range counts {
		c := cfg.Clone()
		c.Bodies = n
		world, err := newWorld(c)
		if err != nil {
			return err
		}

		start := time.Now()
		for i := 0; i < reps; i++ {
			world.Step()
		}
		stepTime := time.Since(start) / reps

		items := bodyItems(world.Bodies())

		start = time.Now()
		var brute spatial.Pair
		for i := 0; i < reps; i++ {
			brute, _ = spatial.BruteForceClosestPair(items)
		}
		bruteTime := time.Since(start) / reps

		start = time.Now()
		var indexed spatial.Pair
		for i := 0; i < reps; i++ {
			ix, err := spatial.Build(world, c.IndexOptions())
			if err != nil {
				return err
			}
			indexed, _ = ix.ClosestPair()
		}
		indexTime := time.Since(start) / reps

		speedup := float64(bruteTime) / float64(max(indexTime, 1))
		fmt.Fprintf(w, "%d\t%v\t%v\t%v\t%.2fx\t%v\n", n, stepTime, bruteTime, indexTime, speedup, brute.Distance == indexed.Distance)
	}

	return w.Flush()
}

func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid value %q", f)
		}
		out = append(out, float64(n))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no values given")
	}
	return out, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	caps, err := parseFloats(capacities)
	if err != nil {
		return fmt.Errorf("capacities: %w", err)
	}
	ds, err := parseFloats(depths)
	if err != nil {
		return fmt.Errorf("depths: %w", err)
	}
	world, err := stepWorld(cfg, atStep)
	if err != nil {
		return err
	}

	grid, err := optim.NewGridSearch([]string{"capacity", "max_depth"}, [][]float64{caps, ds})
	if err != nil {
		return err
	}

	items := bodyItems(world.Bodies())
	want, _ := spatial.BruteForceClosestPair(items)

	const reps = 5
	eval := func(ctx context.Context, p map[string]float64) (float64, error) {
		opts := spatial.Options{Capacity: int(p["capacity"]), MaxDepth: int(p["max_depth"])}
		start := time.Now()
		for i := 0; i < reps; i++ {
			ix, err := spatial.Build(world, opts)
			if err != nil {
				return 0, err
			}
			got, _ := ix.ClosestPair()
			if got.Distance != want.Distance {
				return 0, fmt.Errorf("capacity %d depth %d: closest %.6f, exhaustive %.6f",
					opts.Capacity, opts.MaxDepth, got.Distance, want.Distance)
			}
		}
		return float64(time.Since(start)/reps) / float64(time.Microsecond), nil
	}

	fmt.Printf("tuning quadtree on %d bodies at step %d (%d points)...\n\n", world.Len(), world.Steps(), grid.Size())
	best, score, trials, err := grid.Search(cmd.Context(), eval)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CAPACITY\tDEPTH\tBUILD+QUERY")
	for _, t := range optim.Ranked(trials) {
		fmt.Fprintf(w, "%.0f\t%.0f\t%.1fµs\n", t.Params["capacity"], t.Params["max_depth"], t.Score)
	}
	for _, t := range trials {
		if t.Err != nil {
			fmt.Fprintf(w, "%.0f\t%.0f\terror: %v\n", t.Params["capacity"], t.Params["max_depth"], t.Err)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest: --capacity %.0f --max-depth %.0f (%.1fµs)\n", best["capacity"], best["max_depth"], score)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tBODIES\tSTEPS\tSEED\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.4f\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Bodies,
			run.Steps,
			run.Seed,
			run.EnergyDrift,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("bodies: %d, seed: %d\n", meta.Bodies, meta.Seed)
	fmt.Printf("samples: %d\n\n", len(frames))

	minDist := make([]float64, 0, len(frames))
	kinetic := make([]float64, 0, len(frames))
	for _, f := range frames {
		if f.HasPair {
			minDist = append(minDist, f.MinDistance)
		}
		kinetic = append(kinetic, f.KineticEnergy)
	}

	if len(minDist) > 0 {
		fmt.Println(asciigraph.Plot(minDist,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("closest-pair distance (px)"),
		))
		fmt.Println()
	}
	fmt.Println(asciigraph.Plot(kinetic,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("kinetic energy"),
	))

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if output == "" {
		return st.ExportCSV(args[0], os.Stdout)
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := st.ExportCSV(args[0], f); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "exported to %s\n", output)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]
	path := output
	if path == "" {
		path = filepath.Clean(runID + ".json")
	}

	st := storage.New(dataDir)
	if err := st.ExportJSONFile(runID, path); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}
