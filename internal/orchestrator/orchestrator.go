// Package orchestrator runs one analysis: it assembles the configuration from
// the session, submits it, and renders the result or the error.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/KaramelBytes/custinsights-cli/internal/logging"
	"github.com/KaramelBytes/custinsights-cli/internal/render"
	"github.com/KaramelBytes/custinsights-cli/internal/segment"
	"github.com/KaramelBytes/custinsights-cli/internal/service"
	"github.com/KaramelBytes/custinsights-cli/internal/session"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// User-visible status texts.
const (
	LoaderMessage        = "Running the numbers. It's a whole thing..."
	StatusNoFile         = "Error: Please upload a file."
	StatusBadClusters    = "Error: Please enter a valid number of clusters."
	StatusMappingMissing = "Error: Please map your columns before running the analysis."
	StatusUnreachable    = "Error: Could not fetch data from the server."
)

// ErrBusy is returned when an analysis is already in flight.
var ErrBusy = errors.New("an analysis is already running")

// Analyzer is the part of the service client used to run an analysis.
type Analyzer interface {
	Analyze(ctx context.Context, cfg segment.AnalysisConfig, file *segment.UploadedFile) (*segment.Result, error)
}

// Outcome describes a finished run.
type Outcome struct {
	RunID  string
	Config segment.AnalysisConfig
	Result *segment.Result
}

// Orchestrator runs analyses for one session.
type Orchestrator struct {
	sess *session.Session
	svc  Analyzer
	log  hclog.Logger
}

// New returns an orchestrator submitting through svc. A nil log discards output.
func New(sess *session.Session, svc Analyzer, log hclog.Logger) *Orchestrator {
	return &Orchestrator{sess: sess, svc: svc, log: logging.OrNull(log).Named("orchestrator")}
}

// RunAnalysis performs one run. clusterInput is the raw cluster-count text.
// Every failure is terminal for the run and leaves a status text on screen;
// the loader is hidden on every path. A call made while another run is in
// flight returns ErrBusy and leaves the screen untouched.
func (o *Orchestrator) RunAnalysis(ctx context.Context, clusterInput string) (*Outcome, error) {
	if !o.sess.TryBegin() {
		return nil, ErrBusy
	}
	defer o.sess.End()

	scr := o.sess.Screen
	scr.ShowLoader(LoaderMessage)
	defer scr.HideLoader()
	scr.SetStatus("")
	scr.ClearResults()

	out := &Outcome{RunID: uuid.NewString()}
	log := o.log.With("run_id", out.RunID)

	count, err := segment.ParseClusterCount(clusterInput)
	if err != nil {
		scr.SetStatus(StatusBadClusters)
		return out, err
	}
	cfg := segment.AnalysisConfig{
		UseDefault:   o.sess.Mode() == segment.ModeDefault,
		ClusterCount: count,
	}
	var file *segment.UploadedFile
	if !cfg.UseDefault {
		file = o.sess.File()
		if file == nil {
			scr.SetStatus(StatusNoFile)
			return out, segment.ErrNoFile
		}
		m, err := o.sess.Mapper.Current()
		if err != nil {
			scr.SetStatus(StatusMappingMissing)
			return out, err
		}
		cfg.Mappings = m
	}
	if err := cfg.Validate(); err != nil {
		scr.SetStatus("Error: " + err.Error())
		return out, fmt.Errorf("invalid analysis config: %w", err)
	}
	out.Config = cfg

	log.Debug("submitting analysis", "use_default", cfg.UseDefault, "clusters", cfg.ClusterCount)
	res, err := o.svc.Analyze(service.WithRequestID(ctx, out.RunID), cfg, file)
	if err != nil {
		var se *service.ServiceError
		if errors.As(err, &se) {
			log.Info("service rejected analysis", "message", se.Message)
			scr.SetStatus("Error: " + se.Message)
			return out, err
		}
		log.Error("analysis request failed", "error", err)
		scr.SetStatus(StatusUnreachable)
		return out, err
	}

	scr.ShowResults(render.BuildPlot(res.PlotData.Data), render.BuildPersonaCards(res.PersonaData))
	out.Result = res
	log.Debug("analysis rendered", "points", len(res.PlotData.Data), "personas", len(res.PersonaData))
	return out, nil
}
