package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/KaramelBytes/custinsights-cli/internal/render"
	"github.com/KaramelBytes/custinsights-cli/internal/segment"
	"github.com/KaramelBytes/custinsights-cli/internal/service"
	"github.com/KaramelBytes/custinsights-cli/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	mu      sync.Mutex
	calls   int
	cfg     segment.AnalysisConfig
	file    *segment.UploadedFile
	res     *segment.Result
	err     error
	release chan struct{}
	started chan struct{}
}

func (f *fakeAnalyzer) Analyze(_ context.Context, cfg segment.AnalysisConfig, file *segment.UploadedFile) (*segment.Result, error) {
	f.mu.Lock()
	f.calls++
	f.cfg, f.file = cfg, file
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.res, f.err
}

func threePersonas() *segment.Result {
	return &segment.Result{
		PlotData: segment.PlotData{Data: []segment.SegmentedPoint{
			{Recency: 3, Frequency: 20, MonetaryValue: 5400, Cluster: 0},
			{Recency: 90, Frequency: 4, MonetaryValue: 300, Cluster: 1},
			{Recency: 365, Frequency: 1, MonetaryValue: 20, Cluster: 10},
		}},
		PersonaData: []segment.PersonaSummary{
			{ClusterID: 10, Persona: "Lost", AvgRecency: 365, AvgFrequency: 1, AvgMonetary: 20},
			{ClusterID: 0, Persona: "Champions", AvgRecency: 3, AvgFrequency: 20, AvgMonetary: 1234.5},
			{ClusterID: 1, Persona: "Regulars", AvgRecency: 90, AvgFrequency: 4, AvgMonetary: 0},
		},
	}
}

func uploadedSession(t *testing.T, withFile, withMapping bool) *session.Session {
	t.Helper()
	s := session.New()
	s.SetMode(segment.ModeUploaded)
	if withFile {
		s.SetFile(segment.UploadedFile{Name: "orders.csv", Data: []byte("data")})
	}
	if withMapping {
		s.Mapper.Build([]string{"Customer ID", "Invoice", "InvoiceDate", "Quantity", "Price"})
	}
	return s
}

func TestUploadedWithoutFileNeverCallsService(t *testing.T) {
	s := uploadedSession(t, false, false)
	fa := &fakeAnalyzer{res: threePersonas()}
	o := New(s, fa, nil)

	_, err := o.RunAnalysis(context.Background(), "4")
	assert.ErrorIs(t, err, segment.ErrNoFile)
	assert.Zero(t, fa.calls)
	v := s.Screen.Snapshot()
	assert.Equal(t, StatusNoFile, v.Status)
	assert.NotEmpty(t, v.Status)
	assert.False(t, v.LoaderVisible)
	assert.False(t, v.HasOutput())
	assert.False(t, s.Busy())
}

func TestInvalidClusterCount(t *testing.T) {
	for _, in := range []string{"", "abc", "0", "-3", "2.5"} {
		s := session.New()
		fa := &fakeAnalyzer{res: threePersonas()}
		o := New(s, fa, nil)
		_, err := o.RunAnalysis(context.Background(), in)
		assert.ErrorIs(t, err, segment.ErrInvalidClusterCount, "input %q", in)
		assert.Zero(t, fa.calls)
		v := s.Screen.Snapshot()
		assert.Equal(t, StatusBadClusters, v.Status)
		assert.False(t, v.LoaderVisible)
	}
}

func TestUploadedWithoutMappingIsBlocked(t *testing.T) {
	s := uploadedSession(t, true, false)
	fa := &fakeAnalyzer{res: threePersonas()}
	o := New(s, fa, nil)

	_, err := o.RunAnalysis(context.Background(), "3")
	assert.ErrorIs(t, err, segment.ErrIncompleteMapping)
	assert.Zero(t, fa.calls)
	assert.Equal(t, StatusMappingMissing, s.Screen.Snapshot().Status)
}

func TestDefaultSuccessRendersPlotAndPersonas(t *testing.T) {
	s := session.New()
	fa := &fakeAnalyzer{res: threePersonas()}
	o := New(s, fa, nil)

	out, err := o.RunAnalysis(context.Background(), " 4 ")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, 1, fa.calls)
	assert.True(t, fa.cfg.UseDefault)
	assert.Equal(t, 4, fa.cfg.ClusterCount)
	assert.Nil(t, fa.cfg.Mappings)
	assert.Nil(t, fa.file)

	v := s.Screen.Snapshot()
	assert.Empty(t, v.Status)
	assert.False(t, v.LoaderVisible)
	require.NotNil(t, v.Plot)
	assert.Len(t, v.Plot.Traces[0].X, 3)
	require.Len(t, v.Personas, 3)
	wantOrder := []string{"Lost", "Champions", "Regulars"}
	for i, c := range v.Personas {
		assert.Equal(t, wantOrder[i], c.Persona)
		assert.Equal(t, render.Palette[c.ClusterID%8], c.Color)
	}
	assert.Equal(t, render.Palette[2], v.Personas[0].Color)
	assert.Equal(t, "1234.50", v.Personas[1].Monetary)
	assert.Equal(t, "0.00", v.Personas[2].Monetary)
}

func TestUploadedSendsMappingAndFile(t *testing.T) {
	s := uploadedSession(t, true, true)
	require.NoError(t, s.Mapper.Select(segment.FieldInvoiceID, "Invoice"))
	fa := &fakeAnalyzer{res: threePersonas()}
	o := New(s, fa, nil)

	_, err := o.RunAnalysis(context.Background(), "5")
	require.NoError(t, err)
	assert.False(t, fa.cfg.UseDefault)
	assert.Equal(t, "Invoice", fa.cfg.Mappings[segment.FieldInvoiceID])
	assert.Equal(t, "Customer ID", fa.cfg.Mappings[segment.FieldPrice])
	require.NotNil(t, fa.file)
	assert.Equal(t, "orders.csv", fa.file.Name)
}

func TestServiceErrorClearsPreviousOutput(t *testing.T) {
	s := session.New()
	fa := &fakeAnalyzer{res: threePersonas()}
	o := New(s, fa, nil)
	_, err := o.RunAnalysis(context.Background(), "4")
	require.NoError(t, err)
	require.True(t, s.Screen.Snapshot().HasOutput())

	fa.res, fa.err = nil, &service.ServiceError{Message: "Not enough data"}
	_, err = o.RunAnalysis(context.Background(), "4")
	require.Error(t, err)
	v := s.Screen.Snapshot()
	assert.Equal(t, "Error: Not enough data", v.Status)
	assert.False(t, v.HasOutput(), "stale results must not survive a failed run")
	assert.False(t, v.LoaderVisible)
}

func TestTransportErrorShowsGenericMessage(t *testing.T) {
	s := session.New()
	fa := &fakeAnalyzer{err: &service.TransportError{Op: "analyze", Err: errors.New("dial tcp: connection refused")}}
	o := New(s, fa, nil)

	_, err := o.RunAnalysis(context.Background(), "4")
	require.Error(t, err)
	v := s.Screen.Snapshot()
	assert.Equal(t, StatusUnreachable, v.Status)
	assert.NotContains(t, v.Status, "refused")
	assert.False(t, v.LoaderVisible)
	assert.False(t, v.HasOutput())
}

func TestExactlyOneOfOutputOrError(t *testing.T) {
	cases := []struct {
		name string
		res  *segment.Result
		err  error
	}{
		{"success", threePersonas(), nil},
		{"service", nil, &service.ServiceError{Message: "nope"}},
		{"transport", nil, &service.TransportError{Op: "analyze", Err: errors.New("eof")}},
		{"empty success", &segment.Result{}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := session.New()
			o := New(s, &fakeAnalyzer{res: c.res, err: c.err}, nil)
			_, _ = o.RunAnalysis(context.Background(), "4")
			v := s.Screen.Snapshot()
			hasError := v.Status != ""
			hasOutput := v.Plot != nil
			assert.True(t, hasError != hasOutput, "status=%q plot=%v", v.Status, v.Plot != nil)
		})
	}
}

func TestConcurrentRunIsRejected(t *testing.T) {
	s := session.New()
	fa := &fakeAnalyzer{res: threePersonas(), release: make(chan struct{}), started: make(chan struct{})}
	o := New(s, fa, nil)

	done := make(chan error, 1)
	go func() {
		_, err := o.RunAnalysis(context.Background(), "4")
		done <- err
	}()
	select {
	case <-fa.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first run did not start")
	}
	assert.True(t, s.Screen.Snapshot().LoaderVisible)

	_, err := o.RunAnalysis(context.Background(), "4")
	assert.ErrorIs(t, err, ErrBusy)
	assert.True(t, s.Screen.Snapshot().LoaderVisible, "rejected call must not touch the screen")

	close(fa.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, fa.calls)
	assert.False(t, s.Screen.Snapshot().LoaderVisible)
}
