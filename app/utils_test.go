package app

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"

	actx "go.hackfix.me/crudkit/app/context"
	"go.hackfix.me/crudkit/db"
	"go.hackfix.me/crudkit/db/models"
)

var timeNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func timeNowFn() time.Time {
	return timeNow
}

type testApp struct {
	*App
	stdin          io.Writer
	stdout, stderr *hookWriter
	env            *mockEnv
}

func newTestApp(ctx context.Context) (*testApp, error) {
	d, err := newMemoryDB(ctx)
	if err != nil {
		return nil, err
	}

	stdinR, stdinW := io.Pipe()
	tapp := &testApp{
		stdin:  stdinW,
		stdout: newHookWriter(ctx),
		stderr: newHookWriter(ctx),
		env:    &mockEnv{env: map[string]string{}},
	}

	tapp.App, err = New("crudkit", "/config.json", "/data",
		WithTimeNow(timeNowFn),
		WithEnv(tapp.env),
		WithDB(d),
		WithContext(ctx),
		WithFDs(stdinR, tapp.stdout, tapp.stderr),
		WithFS(memoryfs.New()),
		WithLogger(false, false),
	)
	if err != nil {
		return nil, err
	}

	return tapp, nil
}

// newMemoryDB opens a shared-cache in-memory SQLite database with a random
// name, so that parallel tests never share state.
func newMemoryDB(ctx context.Context) (*db.DB, error) {
	name := make([]byte, 12)
	if _, err := rand.Read(name); err != nil {
		return nil, err
	}

	return db.Open(ctx, fmt.Sprintf("file:crudkit-%x?mode=memory&cache=shared", name), timeNowFn)
}

// Run the app with the given arguments. stdout and stderr hold only what was
// written during this run, even if it fails.
func (ta *testApp) Run(args ...string) error {
	err := ta.App.Run(args)
	ta.stdout.flush()
	ta.stderr.flush()

	return err
}

type mockEnv struct {
	mx  sync.RWMutex
	env map[string]string
}

var _ actx.Environment = (*mockEnv)(nil)

func (me *mockEnv) Get(key string) string {
	me.mx.RLock()
	defer me.mx.RUnlock()
	return me.env[key]
}

func (me *mockEnv) Set(key, val string) error {
	me.mx.Lock()
	defer me.mx.Unlock()
	me.env[key] = val
	return nil
}

// hookWriter records the output of each app run, and lets tests wait for
// specific text to be written while a run is still in progress.
type hookWriter struct {
	ctx context.Context

	mx      sync.Mutex
	current bytes.Buffer // written during the ongoing run
	last    bytes.Buffer // output of the last finished run

	writes chan []byte
	subsMx sync.RWMutex
	subs   []chan []byte
}

func newHookWriter(ctx context.Context) *hookWriter {
	hw := &hookWriter{ctx: ctx, writes: make(chan []byte, 10)}

	go func() {
		for {
			select {
			case d := <-hw.writes:
				hw.subsMx.RLock()
				for _, s := range hw.subs {
					s <- d
				}
				hw.subsMx.RUnlock()
			case <-ctx.Done():
				return
			}
		}
	}()

	return hw
}

func (hw *hookWriter) Write(p []byte) (int, error) {
	hw.mx.Lock()
	n, err := hw.current.Write(p)
	hw.mx.Unlock()
	if err != nil {
		return n, err
	}

	// The logger reuses its buffers.
	select {
	case hw.writes <- bytes.Clone(p):
	case <-hw.ctx.Done():
	}

	return n, nil
}

func (hw *hookWriter) flush() {
	hw.mx.Lock()
	defer hw.mx.Unlock()
	hw.last.Reset()
	hw.last.Write(hw.current.Bytes())
	hw.current.Reset()
}

// String returns the output of the last finished run.
func (hw *hookWriter) String() string {
	hw.mx.Lock()
	defer hw.mx.Unlock()
	return hw.last.String()
}

// waitFor sends to wCh the submatch at matchIdx of the first write that
// matches rxPat. Index 0 is the whole match.
func (hw *hookWriter) waitFor(rxPat string, matchIdx int, wCh chan string) {
	rx := regexp.MustCompile(rxPat)

	ch := make(chan []byte)
	hw.subsMx.Lock()
	hw.subs = append(hw.subs, ch)
	hw.subsMx.Unlock()

	go func() {
		matched := false
		for {
			select {
			case d := <-ch:
				// Keep draining after a match, so writes never block.
				if matched {
					continue
				}
				if match := rx.FindStringSubmatch(string(d)); len(match) > matchIdx {
					wCh <- match[matchIdx]
					matched = true
				}
			case <-hw.ctx.Done():
				return
			}
		}
	}()
}

// newTestContext returns a context that times out after timeout, and an
// assertion handler that cancels it and fails the test on a failed assertion,
// so the test doesn't wait for the timeout. The handler must only be called
// from the test's own goroutine.
func newTestContext(t *testing.T, timeout time.Duration) (
	ctx context.Context, cancelCtx func(), assertHandler func(bool),
) {
	ctx, cancelCtx = context.WithTimeout(t.Context(), timeout)
	assertHandler = func(success bool) {
		if !success {
			cancelCtx()
			t.FailNow()
		}
	}

	return
}

func initTestDB(appCtx *actx.Context, services []*models.Service) error {
	err := appCtx.DB.Init("test", slog.New(slog.DiscardHandler))
	if err != nil {
		return err
	}

	dbCtx := appCtx.DB.NewContext()
	for _, svc := range services {
		if err = svc.Save(dbCtx, appCtx.DB, false); err != nil {
			return err
		}
	}

	return nil
}
