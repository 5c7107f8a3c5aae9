package app

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"

	actx "github.com/nicoalimin/talentscan/app/context"
	"github.com/nicoalimin/talentscan/db"
)

var timeNow = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func timeNowFn() time.Time {
	return timeNow
}

type testApp struct {
	*App
	db             *db.DB
	fs             vfs.FileSystem
	stdout, stderr *bytes.Buffer
	env            *mockEnv
}

func newTestApp(ctx context.Context) (*testApp, error) {
	// A unique name per app, to avoid clashing of in-memory SQLite DBs.
	rndName := make([]byte, 12)
	_, err := rand.Read(rndName)
	if err != nil {
		return nil, err
	}

	// Not using just :memory: to avoid 'no such table' issue.
	// See https://github.com/mattn/go-sqlite3#faq
	d, err := db.Open(ctx,
		fmt.Sprintf("file:talentscan-%x?mode=memory&cache=shared", rndName), timeNowFn)
	if err != nil {
		return nil, err
	}

	var (
		stdout, stderr bytes.Buffer
		fs             = memoryfs.New()
		env            = &mockEnv{env: map[string]string{}}
	)
	opts := []Option{
		WithTimeNow(timeNowFn),
		WithEnv(env),
		WithDB(d),
		WithContext(ctx),
		WithFDs(strings.NewReader(""), &stdout, &stderr),
		WithFS(fs),
		WithLogger(false, false),
	}
	app, err := New("talentscan", "/config.json", "/data", opts...)
	if err != nil {
		return nil, err
	}

	return &testApp{
		App: app, db: d, fs: fs,
		stdout: &stdout, stderr: &stderr, env: env,
	}, nil
}

func (ta *testApp) Run(args ...string) error {
	ta.stdout.Reset()
	ta.stderr.Reset()
	return ta.App.Run(args)
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
