package augtree_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/augtree"
	"github.com/aretw0/augtree/pkg/adapters/memory"
	"github.com/aretw0/augtree/pkg/domain"
	"github.com/aretw0/augtree/pkg/ports"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newOpener returns an opener whose stores share free nodes through an
// in-memory snapshot, like consecutive invocations against the same machine.
func newOpener(root string) ports.OpenFunc {
	snapshots := memory.NewSnapshotStore()
	return func(ctx context.Context, opts ports.OpenOptions) (ports.TreeStore, error) {
		dir := root
		if opts.Root != "" {
			dir = opts.Root
		}
		return memory.Open(memory.WithRoot(dir), memory.WithSnapshotBackend(snapshots))
	}
}

func TestEngine_RerunIsIdempotent(t *testing.T) {
	eng, err := augtree.New(newOpener(t.TempDir()))
	require.NoError(t, err)
	ctx := context.Background()

	block := `
set /files/etc/hosts/01/ipaddr 192.168.0.1
set /files/etc/hosts/01/canonical pigiron.example.com
`
	first, err := eng.Run(ctx, block)
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.Equal(t, []any{true, true}, values(first))

	second, err := eng.Run(ctx, block)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, []any{false, false}, values(second))
}

func TestEngine_EditsFilesThroughLens(t *testing.T) {
	root := t.TempDir()
	hosts := filepath.Join(root, "etc", "hosts")
	require.NoError(t, os.MkdirAll(filepath.Dir(hosts), 0755))
	require.NoError(t, os.WriteFile(hosts, []byte("127.0.0.1\tlocalhost\n"), 0644))

	eng, err := augtree.New(newOpener(root))
	require.NoError(t, err)

	report, err := eng.Run(context.Background(), `
transform Hosts.lns incl /etc/hosts
load
set /files/etc/hosts/01/ipaddr 192.168.0.1
set /files/etc/hosts/01/canonical pigiron.example.com
ins alias after /files/etc/hosts/01/canonical
set /files/etc/hosts/01/alias pigiron
match /files/etc/hosts/*/canonical
`)
	require.NoError(t, err)
	assert.True(t, report.Changed)

	data, err := os.ReadFile(hosts)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1\tlocalhost\n192.168.0.1\tpigiron.example.com pigiron\n", string(data))

	last := report.Entries[len(report.Entries)-1]
	assert.Equal(t, "match /files/etc/hosts/*/canonical", last.Text)
	assert.Len(t, last.Result.Matches, 2)
}

func TestEngine_ParseErrorOpensNothing(t *testing.T) {
	opened := false
	eng, err := augtree.New(func(ctx context.Context, opts ports.OpenOptions) (ports.TreeStore, error) {
		opened = true
		return memory.New(), nil
	})
	require.NoError(t, err)

	_, err = eng.Run(context.Background(), `set /files/a 1
ins x bfore /files/a`)
	assert.ErrorIs(t, err, domain.ErrCommandsParse)
	assert.False(t, opened)
}

func TestEngine_FailedRunDoesNotCommit(t *testing.T) {
	eng, err := augtree.New(newOpener(t.TempDir()))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = eng.Run(ctx, "set /files/a 1\nins x before /files/missing")
	var insErr *domain.InsertError
	require.ErrorAs(t, err, &insErr)
	assert.ErrorIs(t, err, domain.ErrStore)

	report, err := eng.Run(ctx, "match /files/a")
	require.NoError(t, err)
	assert.Empty(t, report.Entries[0].Result.Matches, "nothing from the failed run was saved")
}

func TestEngine_RunPlaybook(t *testing.T) {
	root := t.TempDir()
	eng, err := augtree.New(newOpener(t.TempDir()))
	require.NoError(t, err)

	source, err := memory.NewFromPlaybooks(ports.Playbook{
		Name:     "motd",
		Root:     root,
		Commands: "set /files/etc/motd/text hello",
	})
	require.NoError(t, err)

	report, err := eng.RunPlaybook(context.Background(), source, "motd")
	require.NoError(t, err)
	assert.True(t, report.Changed)

	_, err = eng.RunPlaybook(context.Background(), source, "missing")
	assert.ErrorIs(t, err, domain.ErrPlaybookNotFound)
}

func TestEngine_Host(t *testing.T) {
	eng, err := augtree.New(newOpener(t.TempDir()))
	require.NoError(t, err)

	resp := eng.Host().RunRaw(context.Background(), map[string]any{
		"command": "set",
		"path":    "/files/etc/motd/text",
		"value":   "hello",
	})
	require.False(t, resp.Failed, resp.Msg)
	assert.Equal(t, true, resp.Result)
}

type recordingLocker struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.events = append(l.events, "lock "+key)
	return func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.events = append(l.events, "unlock "+key)
		return nil
	}, nil
}

func TestEngine_Locker(t *testing.T) {
	locker := &recordingLocker{}
	eng, err := augtree.New(newOpener(t.TempDir()), augtree.WithLocker(locker, "web-01", time.Minute))
	require.NoError(t, err)

	_, err = eng.Run(context.Background(), "set /files/a 1")
	require.NoError(t, err)
	_, err = eng.Run(context.Background(), "ins x before /files/missing")
	require.Error(t, err)

	if diff := cmp.Diff([]string{"lock web-01", "unlock web-01", "lock web-01", "unlock web-01"}, locker.events); diff != "" {
		t.Errorf("lock events mismatch (-want +got):\n%s", diff)
	}

	locker.err = errors.New("redis down")
	_, err = eng.Run(context.Background(), "set /files/a 2")
	assert.EqualError(t, err, `failed to acquire run lock "web-01": redis down`)
}

func TestEngine_LockCoversOpen(t *testing.T) {
	locker := &recordingLocker{}
	open := newOpener(t.TempDir())
	eng, err := augtree.New(func(ctx context.Context, opts ports.OpenOptions) (ports.TreeStore, error) {
		locker.mu.Lock()
		locker.events = append(locker.events, "open")
		locker.mu.Unlock()
		return open(ctx, opts)
	}, augtree.WithLocker(locker, "web-01", time.Minute))
	require.NoError(t, err)

	_, err = eng.Run(context.Background(), "set /files/a 1")
	require.NoError(t, err)
	resp := eng.Host().RunRaw(context.Background(), map[string]any{"command": "match", "path": "/files/a"})
	require.False(t, resp.Failed, resp.Msg)

	want := []string{"lock web-01", "open", "unlock web-01", "lock web-01", "open", "unlock web-01"}
	if diff := cmp.Diff(want, locker.events); diff != "" {
		t.Errorf("lock events mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_ConcurrentLockedRunsKeepEveryWrite(t *testing.T) {
	eng, err := augtree.New(newOpener(t.TempDir()), augtree.WithLocker(memory.NewLocker(), "web-01", time.Minute))
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, block := range []string{"set /files/a 1", "set /files/b 2", "set /files/c 3", "set /files/d 4"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report, err := eng.Run(ctx, block)
			if assert.NoError(t, err) {
				assert.True(t, report.Changed)
			}
		}()
	}
	wg.Wait()

	report, err := eng.Run(ctx, "match /files/*")
	require.NoError(t, err)
	assert.Len(t, report.Entries[0].Result.Matches, 4)
}

func TestNew_Validation(t *testing.T) {
	_, err := augtree.New(nil)
	assert.Error(t, err)

	_, err = augtree.New(newOpener(t.TempDir()), augtree.WithLocker(&recordingLocker{}, "k", 0))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	seq, err := augtree.Parse(`set /files/etc/motd/text "hello world"` + "\n" + `rm '/files/etc/hosts/*[canonical="x"]'`)
	require.NoError(t, err)

	again, err := augtree.Parse(augtree.Format(seq))
	require.NoError(t, err)
	if diff := cmp.Diff(seq, again); diff != "" {
		t.Errorf("Parse(Format(seq)) mismatch (-want +got):\n%s", diff)
	}
}

func values(r *domain.Report) []any {
	out := make([]any, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, e.Result.Value())
	}
	return out
}
