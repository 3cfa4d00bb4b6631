package runtime_test

import (
	"errors"
	"slices"
	"strings"

	"github.com/aretw0/augtree/pkg/domain"
)

// fakeStore is a flat path -> value map standing in for a tree store.
// A path matches itself; "<prefix>/*" matches the direct children of prefix.
type fakeStore struct {
	paths  []string
	values map[string]*string

	// errorNodes holds the error subtree: report path -> category, and
	// "<report>/<field>" -> field value.
	errorNodes map[string]string
	reports    []string

	setErr    error
	insertErr error
	saveErr   error
	loadErr   error

	calls []string
	saves int
	loads int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		values:     make(map[string]*string),
		errorNodes: make(map[string]string),
	}
}

func (s *fakeStore) report(path, category string, fields map[string]string) {
	s.reports = append(s.reports, path)
	s.errorNodes[path] = category
	for k, v := range fields {
		s.errorNodes[path+"/"+k] = v
	}
}

func (s *fakeStore) Get(path string) (string, bool, error) {
	s.calls = append(s.calls, "get "+path)
	if v, ok := s.errorNodes[path]; ok {
		return v, true, nil
	}
	v, ok := s.values[path]
	if !ok || v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (s *fakeStore) Set(path, value string) error {
	s.calls = append(s.calls, "set "+path)
	if s.setErr != nil {
		return s.setErr
	}
	if _, ok := s.values[path]; !ok {
		s.paths = append(s.paths, path)
	}
	s.values[path] = &value
	return nil
}

func (s *fakeStore) Remove(path string) (int, error) {
	s.calls = append(s.calls, "rm "+path)
	removed := 0
	s.paths = slices.DeleteFunc(s.paths, func(p string) bool {
		if p == path || strings.HasPrefix(p, path+"/") {
			delete(s.values, p)
			removed++
			return true
		}
		return false
	})
	return removed, nil
}

func (s *fakeStore) Match(path string) ([]string, error) {
	s.calls = append(s.calls, "match "+path)
	if path == domain.ErrorPattern {
		return slices.Clone(s.reports), nil
	}
	if prefix, ok := strings.CutSuffix(path, "/*"); ok {
		var out []string
		for _, r := range s.reports {
			if r == prefix {
				var fields []string
				for k := range s.errorNodes {
					if strings.HasPrefix(k, prefix+"/") {
						fields = append(fields, k)
					}
				}
				slices.Sort(fields)
				return fields, nil
			}
		}
		for _, p := range s.paths {
			rest, ok := strings.CutPrefix(p, prefix+"/")
			if ok && !strings.Contains(rest, "/") {
				out = append(out, p)
			}
		}
		return out, nil
	}
	if slices.Contains(s.paths, path) {
		return []string{path}, nil
	}
	return nil, nil
}

func (s *fakeStore) Insert(path, label string, before bool) error {
	s.calls = append(s.calls, "ins "+label+" "+path)
	if s.insertErr != nil {
		return s.insertErr
	}
	if !slices.Contains(s.paths, path) {
		return errors.New("no anchor")
	}
	parent := path[:strings.LastIndex(path, "/")]
	s.paths = append(s.paths, parent+"/"+label)
	s.values[parent+"/"+label] = nil
	return nil
}

func (s *fakeStore) Transform(lens, file string, exclude bool) error {
	mode := "incl"
	if exclude {
		mode = "excl"
	}
	s.calls = append(s.calls, "transform "+lens+" "+mode+" "+file)
	return nil
}

func (s *fakeStore) Load() error {
	s.calls = append(s.calls, "load")
	s.loads++
	return s.loadErr
}

func (s *fakeStore) Save() error {
	s.calls = append(s.calls, "save")
	s.saves++
	return s.saveErr
}
