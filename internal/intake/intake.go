// Package intake accepts a spreadsheet, asks the service for its headers and
// hands them to the column mapper.
package intake

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/custinsights-cli/internal/logging"
	"github.com/KaramelBytes/custinsights-cli/internal/segment"
	"github.com/KaramelBytes/custinsights-cli/internal/service"
	"github.com/KaramelBytes/custinsights-cli/internal/session"
	"github.com/hashicorp/go-hclog"
)

const (
	StatusReading      = "Reading the spreadsheet..."
	StatusFetchHeaders = "Error fetching column headers."
)

// HeaderDiscoverer is the part of the service client used for header discovery.
type HeaderDiscoverer interface {
	DiscoverHeaders(ctx context.Context, file segment.UploadedFile) ([]string, error)
}

// Intake drives the file selection flow of a session.
type Intake struct {
	sess *session.Session
	svc  HeaderDiscoverer
	log  hclog.Logger
}

func New(sess *session.Session, svc HeaderDiscoverer, log hclog.Logger) *Intake {
	return &Intake{sess: sess, svc: svc, log: logging.OrNull(log).Named("intake")}
}

// SelectPath reads path from disk and selects it.
func (in *Intake) SelectPath(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	return in.SelectFile(ctx, &segment.UploadedFile{Name: filepath.Base(path), Data: data})
}

// SelectFile makes f the session's file and discovers its headers. The
// outcome is always reflected on the screen; the returned error is for
// callers that need an exit status. A nil file is ignored.
func (in *Intake) SelectFile(ctx context.Context, f *segment.UploadedFile) error {
	if f == nil {
		return nil
	}
	gen := in.sess.SetFile(*f)
	in.sess.Mapper.Reset()
	in.sess.Screen.ClearMapping()
	in.sess.Screen.SetDropLabel("File selected: " + f.Name)
	in.sess.Screen.SetStatus(StatusReading)
	in.log.Debug("discovering headers", "file", f.Name, "bytes", len(f.Data))

	headers, err := in.svc.DiscoverHeaders(ctx, *f)
	if !in.sess.IsCurrent(gen) {
		in.log.Debug("discarding stale headers", "file", f.Name, "mode", in.sess.Mode())
		if in.sess.Mode() == segment.ModeDefault {
			in.sess.Screen.SetStatus("")
		}
		return nil
	}
	if err != nil {
		var se *service.ServiceError
		if errors.As(err, &se) {
			in.sess.Screen.SetStatus("Error: " + se.Message)
			return err
		}
		in.log.Error("header discovery failed", "file", f.Name, "error", err)
		in.sess.Screen.SetStatus(StatusFetchHeaders)
		return err
	}
	in.sess.Screen.SetStatus("")
	in.sess.Mapper.Build(headers)
	in.sess.Screen.ShowMapping(in.sess.Mapper.Selectors())
	in.log.Debug("headers loaded", "file", f.Name, "count", len(headers))
	return nil
}
