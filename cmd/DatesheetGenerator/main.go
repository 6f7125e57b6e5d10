package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/datesheet/go-datesheet/internal/config"
	"github.com/datesheet/go-datesheet/internal/csvio"
	"github.com/datesheet/go-datesheet/internal/scheduler"
	"github.com/datesheet/go-datesheet/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))

	delim := cfg.Files.Delim()

	// Parse and instantiate catalog objects from CSV
	courses, err := csvio.LoadCourses(cfg.Files.CoursesFile, delim)
	if err != nil {
		log.Fatal("load courses", zap.Error(err))
	}
	enrollments, err := csvio.LoadEnrollments(cfg.Files.EnrollmentsFile, delim)
	if err != nil {
		log.Fatal("load enrollments", zap.Error(err))
	}
	rooms, err := csvio.LoadRooms(cfg.Files.RoomsFile, delim)
	if err != nil {
		log.Fatal("load rooms", zap.Error(err))
	}
	slots, err := csvio.LoadSlots(cfg.Files.SlotsFile, delim)
	if err != nil {
		log.Fatal("load slots", zap.Error(err))
	}
	teachers, err := csvio.LoadTeachers(cfg.Files.TeachersFile, delim)
	if err != nil {
		log.Fatal("load teachers", zap.Error(err))
	}

	// Pins are optional input
	var pinned int
	if _, statErr := os.Stat(cfg.Files.PinsFile); statErr == nil {
		pins, pinErr := csvio.LoadPins(cfg.Files.PinsFile, delim, courses)
		if pinErr != nil {
			log.Fatal("load pins", zap.Error(pinErr))
		}
		pinned = len(pins)
	}

	log.Info("loaded snapshot",
		zap.Int("courses", len(courses)),
		zap.Int("enrollments", len(enrollments)),
		zap.Int("rooms", len(rooms)),
		zap.Int("slots", len(slots)),
		zap.Int("teachers", len(teachers)),
		zap.Int("pinned", pinned))

	graph, err := scheduler.BuildConflictGraph(courses, enrollments)
	if err != nil {
		log.Fatal("build conflict graph", zap.Error(err))
	}

	catalog, err := scheduler.NewCatalog(slots, rooms, teachers)
	if err != nil {
		log.Fatal("build catalog", zap.Error(err))
	}

	opts := scheduler.Options{
		MinBreakSlots: cfg.Search.MinBreakSlots,
		MaxSteps:      cfg.Search.MaxSteps,
		Parallel:      cfg.Search.Parallel,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Search.Timeout)
	defer cancel()

	// Start timer
	start := time.Now()
	s := scheduler.New(catalog, log)
	assignment, err := s.Schedule(ctx, graph, nil, opts)
	if err != nil {
		var inf *scheduler.InfeasibleError
		if errors.As(err, &inf) {
			fmt.Println(inf.Report.Summary())
			if !inf.Report.Partial {
				log.Fatal("schedule infeasible", zap.Int64("steps", inf.Report.Steps))
			}
			log.Warn("budget exhausted, keeping best partial datesheet",
				zap.Int64("steps", inf.Report.Steps),
				zap.Int("blocked", len(inf.Report.Blocked)))
			assignment = inf.Report.Assigned
		} else {
			log.Fatal("schedule", zap.Error(err))
		}
	}
	elapsed := time.Since(start)

	plan, err := scheduler.AllocateRooms(assignment, graph, catalog)
	if err != nil {
		log.Fatal("allocate rooms", zap.Error(err))
	}

	valid, msg := scheduler.Validate(graph, catalog, assignment, plan, opts.MinBreakSlots)
	fmt.Print(msg)
	if !valid {
		log.Fatal("datesheet failed validation")
	}

	csvio.PrintDatesheet(assignment, plan, graph, catalog)

	exported, err := csvio.ExportDatesheet(assignment, plan, graph, catalog, cfg.Files.ExportFile)
	if err != nil {
		log.Fatal("export csv", zap.Error(err))
	}
	if err := csvio.ExportDatesheetXLSX(assignment, plan, graph, catalog, cfg.Files.ExportXLSXFile); err != nil {
		log.Fatal("export xlsx", zap.Error(err))
	}

	log.Info("datesheet ready",
		zap.Int("courses", graph.Len()),
		zap.Int("assigned", len(assignment.Slots)),
		zap.Duration("took", elapsed),
		zap.String("csv", exported),
		zap.String("xlsx", cfg.Files.ExportXLSXFile))
	fmt.Printf("Scheduled %d/%d courses in %v\n", len(assignment.Slots), graph.Len(), elapsed)
}
