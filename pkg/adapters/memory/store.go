package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/augtree/internal/fsutil"
	"github.com/aretw0/augtree/internal/logging"
	"github.com/aretw0/augtree/pkg/domain"
	"github.com/aretw0/augtree/pkg/lens"
	"github.com/aretw0/augtree/pkg/ports"
)

// Error categories recorded in the error subtree.
const (
	errMultipleMatches = "mmatch"
	errNoMatch         = "nomatch"
	errPathExpr        = "pathx"
	errLabel           = "label"
	errParseFailed     = "parse_failed"
	errReadFailed      = "read_failed"
	errWriteFailed     = "write_failed"
)

// Store implements ports.TreeStore as an in-memory tree.
//
// Files registered with Transform are parsed through lenses into /files on
// Load and written back on Save. Nodes under /files that no lens owns are kept
// in the optional snapshot backend. Safe for concurrent use.
type Store struct {
	mu sync.Mutex

	root    *node
	fsRoot  string
	lenses  *lens.Registry
	backend ports.SnapshotBackend
	name    string
	ctx     context.Context
	logger  *slog.Logger

	initial []transform

	// loaded maps a file ("/etc/hosts") to the lens and fingerprint it was
	// last read or written with.
	loaded        map[string]loadedFile
	snapshotPrint uint64
}

type loadedFile struct {
	module string
	sum    uint64
}

// transform is a lens registration read back from /augeas/load.
type transform struct {
	module string
	lens   string
	incl   []string
	excl   []string
}

// Option configures a Store.
type Option func(*Store)

// WithRoot sets the directory files are read from and written to. Default "/".
func WithRoot(dir string) Option {
	return func(s *Store) {
		if dir != "" {
			s.fsRoot = dir
		}
	}
}

// WithLenses replaces the lens registry. Default lens.Default().
func WithLenses(r *lens.Registry) Option {
	return func(s *Store) {
		s.lenses = r
	}
}

// WithSnapshotBackend persists nodes no lens owns.
func WithSnapshotBackend(b ports.SnapshotBackend) Option {
	return func(s *Store) {
		s.backend = b
	}
}

// WithName sets the snapshot name. Default "default".
func WithName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.name = name
		}
	}
}

// WithTransform registers a transform when the store is created.
func WithTransform(lensName, file string, exclude bool) Option {
	return func(s *Store) {
		t := transform{module: lens.ModuleName(lensName), lens: lens.QualifiedName(lensName)}
		if exclude {
			t.excl = []string{file}
		} else {
			t.incl = []string{file}
		}
		s.initial = append(s.initial, t)
	}
}

// WithContext sets the context used for snapshot backend calls.
func WithContext(ctx context.Context) Option {
	return func(s *Store) {
		s.ctx = ctx
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty store. Call Load to read registered files.
func New(opts ...Option) *Store {
	s := &Store{
		root:          newNode(""),
		fsRoot:        "/",
		lenses:        lens.Default(),
		name:          "default",
		ctx:           context.Background(),
		logger:        logging.NewNop(),
		loaded:        make(map[string]loadedFile),
		snapshotPrint: fingerprint(nil),
	}
	for _, opt := range opts {
		opt(s)
	}

	aug := s.root.append("augeas")
	aug.append("root").setValue(strings.TrimSuffix(s.fsRoot, "/") + "/")
	load := aug.append("load")
	for _, t := range s.initial {
		m := load.ensure(t.module)
		m.ensure("lens").setValue(t.lens)
		for _, f := range t.incl {
			m.append("incl").setValue(f)
		}
		for _, f := range t.excl {
			m.append("excl").setValue(f)
		}
	}
	s.root.append("files")
	return s
}

// Open creates a store and loads it.
func Open(opts ...Option) (*Store, error) {
	s := New(opts...)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) augeas() *node { return s.root.ensure("augeas") }
func (s *Store) files() *node  { return s.root.ensure("files") }

func (s *Store) resetError() {
	if e := s.augeas().child("error"); e != nil {
		e.detach()
	}
}

// fail records the error under /augeas/error and returns it wrapped in sentinel.
func (s *Store) fail(sentinel error, code, message string) error {
	s.resetError()
	e := s.augeas().append("error")
	e.setValue(code)
	e.append("message").setValue(message)
	return fmt.Errorf("%w: %s", sentinel, message)
}

func (s *Store) find(path string) ([]*node, []step, error) {
	steps, err := parsePath(path)
	if err != nil {
		return nil, nil, s.fail(domain.ErrValidation, errPathExpr, err.Error())
	}
	return eval(s.root, steps), steps, nil
}

// Get implements ports.TreeStore.
func (s *Store) Get(path string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, _, err := s.find(path)
	if err != nil {
		return "", false, err
	}
	switch len(nodes) {
	case 0:
		return "", false, nil
	case 1:
		if nodes[0].value == nil {
			return "", false, nil
		}
		return *nodes[0].value, true, nil
	}
	return "", false, s.fail(domain.ErrValidation, errMultipleMatches,
		fmt.Sprintf("path %s matches %d nodes", path, len(nodes)))
}

// Set implements ports.TreeStore. An unmatched path is created below its
// longest prefix matching exactly one node; every created step must be a
// plain label, optionally with a position predicate.
func (s *Store) Set(path, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetError()

	nodes, steps, err := s.find(path)
	if err != nil {
		return err
	}
	switch len(nodes) {
	case 1:
		nodes[0].setValue(value)
		return nil
	case 0:
		n, err := s.create(path, steps)
		if err != nil {
			return err
		}
		n.setValue(value)
		return nil
	}
	return s.fail(domain.ErrValidation, errMultipleMatches,
		fmt.Sprintf("path %s matches %d nodes", path, len(nodes)))
}

func (s *Store) create(path string, steps []step) (*node, error) {
	k := len(steps) - 1
	var base *node
	for ; k >= 0; k-- {
		m := eval(s.root, steps[:k])
		if len(m) > 1 {
			return nil, s.fail(domain.ErrValidation, errMultipleMatches,
				fmt.Sprintf("cannot create %s: parent matches %d nodes", path, len(m)))
		}
		if len(m) == 1 {
			base = m[0]
			break
		}
	}
	for _, st := range steps[k:] {
		if !st.creatable() {
			return nil, s.fail(domain.ErrValidation, errPathExpr,
				fmt.Sprintf("cannot create %s: step %q is not a plain label", path, st.name))
		}
	}
	for _, st := range steps[k:] {
		base = base.append(st.name)
	}
	return base, nil
}

// Remove implements ports.TreeStore.
func (s *Store) Remove(path string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetError()

	nodes, _, err := s.find(path)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, n := range nodes {
		// Descendants of a node removed earlier in the loop are already gone.
		if n == s.root || !n.attached(s.root) {
			continue
		}
		removed += n.detach()
	}
	return removed, nil
}

// Match implements ports.TreeStore.
func (s *Store) Match(path string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, _, err := s.find(path)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(nodes))
	for _, n := range nodes {
		paths = append(paths, n.path())
	}
	return paths, nil
}

// Insert implements ports.TreeStore.
func (s *Store) Insert(path, label string, before bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetError()

	if label == "" || strings.Contains(label, "/") {
		return s.fail(domain.ErrValidation, errLabel, fmt.Sprintf("invalid label %q", label))
	}
	nodes, _, err := s.find(path)
	if err != nil {
		return err
	}
	switch {
	case len(nodes) == 0:
		return s.fail(domain.ErrNoMatch, errNoMatch, fmt.Sprintf("path %s matches no node", path))
	case len(nodes) > 1:
		return s.fail(domain.ErrValidation, errMultipleMatches,
			fmt.Sprintf("path %s matches %d nodes", path, len(nodes)))
	case nodes[0] == s.root:
		return s.fail(domain.ErrValidation, errPathExpr, "the root node has no siblings")
	}
	nodes[0].insert(label, before)
	return nil
}

// Transform implements ports.TreeStore. The registration is stored under
// /augeas/load/<Module> as a lens node plus incl or excl entries.
func (s *Store) Transform(lensName, file string, exclude bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetError()

	module := lens.ModuleName(lensName)
	if module == "" || strings.Contains(module, "/") {
		return s.fail(domain.ErrValidation, errLabel, fmt.Sprintf("invalid lens name %q", lensName))
	}
	if file == "" {
		return s.fail(domain.ErrValidation, errPathExpr, "transform needs a file")
	}

	m := s.augeas().ensure("load").ensure(module)
	m.ensure("lens").setValue(lens.QualifiedName(lensName))
	kind := "incl"
	if exclude {
		kind = "excl"
	}
	for _, c := range m.children {
		if c.label == kind && c.value != nil && *c.value == file {
			return nil
		}
	}
	m.append(kind).setValue(file)
	return nil
}

func (s *Store) transforms() []transform {
	load := s.augeas().child("load")
	if load == nil {
		return nil
	}
	var out []transform
	for _, m := range load.children {
		t := transform{module: m.label, lens: m.label}
		for _, c := range m.children {
			if c.value == nil {
				continue
			}
			switch c.label {
			case "lens":
				t.lens = *c.value
			case "incl":
				t.incl = append(t.incl, *c.value)
			case "excl":
				t.excl = append(t.excl, *c.value)
			}
		}
		out = append(out, t)
	}
	return out
}

func (t transform) excludes(file string) bool {
	for _, pattern := range t.excl {
		if ok, _ := filepath.Match(filepath.FromSlash(pattern), filepath.FromSlash(file)); ok {
			return true
		}
	}
	return false
}

func (t transform) owns(file string) bool {
	for _, pattern := range t.incl {
		if ok, _ := filepath.Match(filepath.FromSlash(pattern), filepath.FromSlash(file)); ok {
			return !t.excludes(file)
		}
	}
	return false
}

// ownerOf returns the first transform including file.
func (s *Store) ownerOf(file string, transforms []transform) (transform, bool) {
	for _, t := range transforms {
		if t.owns(file) {
			return t, true
		}
	}
	return transform{}, false
}

// expand lists the existing files an include pattern selects, relative to the root.
func (s *Store) expand(t transform) []string {
	var files []string
	for _, pattern := range t.incl {
		matches, err := filepath.Glob(filepath.Join(s.fsRoot, filepath.FromSlash(pattern)))
		if err != nil {
			continue
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			rel, err := filepath.Rel(s.fsRoot, m)
			if err != nil {
				continue
			}
			file := "/" + filepath.ToSlash(rel)
			if !t.excludes(file) {
				files = append(files, file)
			}
		}
	}
	return files
}

func (s *Store) abs(file string) string {
	return filepath.Join(s.fsRoot, filepath.FromSlash(file))
}

// fileInfo returns the /augeas/files<file> node, creating it.
func (s *Store) fileInfo(file string) *node {
	n := s.augeas().ensure("files")
	for _, label := range strings.Split(strings.TrimPrefix(file, "/"), "/") {
		n = n.ensure(label)
	}
	return n
}

func (s *Store) recordFileError(file, code, lensName string, err error) {
	info := s.fileInfo(file)
	if old := info.child("error"); old != nil {
		old.detach()
	}
	e := info.append("error")
	e.setValue(code)
	e.append("message").setValue(err.Error())
	if lensName != "" {
		e.append("lens").setValue(lensName)
	}
}

// Load implements ports.TreeStore. It discards /files, restores the snapshot
// and parses every included file through its lens.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetError()

	files := s.files()
	for len(files.children) > 0 {
		files.children[0].detach()
	}
	if info := s.augeas().child("files"); info != nil {
		info.detach()
	}
	for _, m := range s.augeas().ensure("load").children {
		if e := m.child("error"); e != nil {
			e.detach()
		}
	}
	s.loaded = make(map[string]loadedFile)
	s.snapshotPrint = fingerprint(nil)

	if s.backend != nil {
		snap, err := s.backend.Load(s.ctx, s.name)
		switch {
		case errors.Is(err, domain.ErrSnapshotNotFound):
		case err != nil:
			return fmt.Errorf("failed to load snapshot %q: %w", s.name, err)
		default:
			files.mount(snap.Nodes)
			s.snapshotPrint = fingerprint(snap.Nodes)
		}
	}

	for _, t := range s.transforms() {
		l, err := s.lenses.Lookup(t.lens)
		if err != nil {
			m := s.augeas().child("load").child(t.module)
			m.ensure("error").setValue(err.Error())
			s.logger.Warn("transform skipped", "module", t.module, "error", err)
			continue
		}
		for _, file := range s.expand(t) {
			if _, done := s.loaded[file]; done {
				continue
			}
			s.loadFile(file, t, l)
		}
	}
	return nil
}

func (s *Store) loadFile(file string, t transform, l lens.Lens) {
	content, err := os.ReadFile(s.abs(file))
	if err != nil {
		s.recordFileError(file, errReadFailed, t.lens, err)
		return
	}
	nodes, err := l.Get(content)
	if err != nil {
		s.recordFileError(file, errParseFailed, t.lens, err)
		s.logger.Warn("file not parsed", "file", file, "lens", t.lens, "error", err)
		return
	}

	labels := strings.Split(strings.TrimPrefix(file, "/"), "/")
	parent := s.files()
	for _, label := range labels[:len(labels)-1] {
		parent = parent.ensure(label)
	}
	if old := parent.child(labels[len(labels)-1]); old != nil {
		old.detach()
	}
	parent.append(labels[len(labels)-1]).mount(nodes)

	info := s.fileInfo(file)
	info.ensure("path").setValue(domain.FilesRoot + file)
	info.ensure("lens").setValue("@" + t.module)
	s.loaded[file] = loadedFile{module: t.module, sum: fingerprint(nodes)}
	s.logger.Debug("file loaded", "file", file, "lens", t.lens)
}

// Save implements ports.TreeStore. Files whose tree changed since they were
// loaded are rendered through their lens and replaced atomically; files
// whose tree was removed are deleted, even when their transform is gone. Lens failures are recorded as
// put_failed under /augeas/files<file>/error.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetError()

	if events := s.augeas().child("events"); events != nil {
		events.detach()
	}

	transforms := s.transforms()
	owned := make(map[*node]bool)
	seen := make(map[string]bool)
	failed := 0

	var visit func(n *node, dir string)
	visit = func(n *node, dir string) {
		for _, c := range n.children {
			file := dir + "/" + c.label
			t, ok := s.ownerOf(file, transforms)
			if !ok {
				visit(c, file)
				continue
			}
			owned[c] = true
			if seen[file] {
				continue
			}
			seen[file] = true
			if err := s.saveFile(file, t, c); err != nil {
				failed++
			}
		}
	}
	visit(s.files(), "")

	for file := range s.loaded {
		if seen[file] {
			continue
		}
		// A file that lost its transform keeps its content while its tree
		// is still mounted; only a removed tree deletes the file.
		if n := s.fileNode(file); n != nil {
			owned[n] = true
			continue
		}
		if err := os.Remove(s.abs(file)); err != nil && !os.IsNotExist(err) {
			s.recordFileError(file, errWriteFailed, "", err)
			failed++
			continue
		}
		delete(s.loaded, file)
		s.augeas().ensure("events").append("removed").setValue(domain.FilesRoot + file)
	}

	if s.backend != nil {
		free := exportFree(s.files(), owned)
		sum := fingerprint(free)
		if sum != s.snapshotPrint {
			if err := s.backend.Save(s.ctx, &domain.Snapshot{Name: s.name, Nodes: free}); err != nil {
				return s.fail(domain.ErrSaveFailed, errWriteFailed, fmt.Sprintf("snapshot %q: %v", s.name, err))
			}
			s.snapshotPrint = sum
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d file(s) could not be written", domain.ErrSaveFailed, failed)
	}
	return nil
}

// fileNode returns the node mounted at /files<file>, or nil.
func (s *Store) fileNode(file string) *node {
	n := s.files()
	for _, label := range strings.Split(strings.TrimPrefix(file, "/"), "/") {
		if n = n.child(label); n == nil {
			return nil
		}
	}
	return n
}

func (s *Store) saveFile(file string, t transform, n *node) error {
	nodes := n.export()
	sum := fingerprint(nodes)
	if lf, ok := s.loaded[file]; ok && lf.sum == sum {
		return nil
	}

	l, err := s.lenses.Lookup(t.lens)
	if err != nil {
		s.recordFileError(file, domain.ErrorTypePutFailed, t.lens, err)
		return err
	}
	data, err := l.Put(nodes)
	if err != nil {
		s.recordFileError(file, domain.ErrorTypePutFailed, t.lens, err)
		s.logger.Warn("file not rendered", "file", file, "lens", t.lens, "error", err)
		return err
	}
	abs := s.abs(file)
	if err := fsutil.WriteFileAtomic(abs, data, fsutil.FileMode(abs, 0644)); err != nil {
		s.recordFileError(file, errWriteFailed, t.lens, err)
		return err
	}

	s.loaded[file] = loadedFile{module: t.module, sum: sum}
	if e := s.fileInfo(file).child("error"); e != nil {
		e.detach()
	}
	s.augeas().ensure("events").append("saved").setValue(domain.FilesRoot + file)
	s.logger.Debug("file saved", "file", file, "lens", t.lens)
	return nil
}

// exportFree copies the nodes below n that no lens owns. Interior nodes left
// without children or value are dropped.
func exportFree(n *node, owned map[*node]bool) []domain.TreeNode {
	var out []domain.TreeNode
	for _, c := range n.children {
		if owned[c] {
			continue
		}
		t := domain.TreeNode{Label: c.label, Children: exportFree(c, owned)}
		if c.value != nil {
			v := *c.value
			t.Value = &v
		}
		if t.Value == nil && len(t.Children) == 0 && len(c.children) > 0 {
			continue
		}
		out = append(out, t)
	}
	return out
}
