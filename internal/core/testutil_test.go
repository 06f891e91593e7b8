package core

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// fakeMeta serves canned version records, newest first.
type fakeMeta struct {
	recs          []VersionRecord
	versionsCalls int32
}

func (m *fakeMeta) Versions(ctx context.Context) ([]VersionRecord, error) {
	atomic.AddInt32(&m.versionsCalls, 1)
	return m.recs, nil
}

func (m *fakeMeta) ForVersion(ctx context.Context, number string) (*VersionRecord, error) {
	for i := range m.recs {
		if m.recs[i].Number == number {
			return &m.recs[i], nil
		}
	}
	return nil, &NotFoundError{Version: number}
}

func (m *fakeMeta) Latest(ctx context.Context) (*VersionRecord, error) {
	if len(m.recs) == 0 {
		return nil, &NotFoundError{}
	}
	return &m.recs[0], nil
}

// fakeSource serves canned file contents keyed by "<ref>/<path>".
type fakeSource struct {
	files map[string]string
	reads []string
}

func (s *fakeSource) ReadFile(ctx context.Context, path, ref string) (string, error) {
	key := ref + "/" + path
	s.reads = append(s.reads, key)
	if content, ok := s.files[key]; ok {
		return content, nil
	}
	return "", ErrNotFound
}

func (s *fakeSource) WebURL(path, ref string) string {
	return "https://example.com/blob/" + ref + "/" + path
}

func mustName(t *testing.T, s string) CanonicalName {
	t.Helper()
	n, err := ParseName(s)
	if err != nil {
		t.Fatalf("ParseName(%q) failed: %v", s, err)
	}
	return n
}

func day(n int) time.Time {
	return time.Date(2023, time.March, n, 0, 0, 0, 0, time.UTC)
}
