package services

import "strings"

// RunContext carries the memoization caches of one import run. It is
// created per ImportOne invocation and passed explicitly through every
// resolver call, so nothing is shared between runs and a future
// parallel caller needs no locking.
type RunContext struct {
	localByKey         map[resolveKey]int64
	categoryByRemoteID map[int]int64
}

type resolveKey struct {
	kind  string
	scope int64
	key   string
}

func NewRunContext() *RunContext {
	return &RunContext{
		localByKey:         make(map[resolveKey]int64),
		categoryByRemoteID: make(map[int]int64),
	}
}

func (r *RunContext) lookup(kind string, scope int64, key string) (int64, bool) {
	id, ok := r.localByKey[resolveKey{kind: kind, scope: scope, key: key}]
	return id, ok
}

func (r *RunContext) store(kind string, scope int64, key string, id int64) {
	r.localByKey[resolveKey{kind: kind, scope: scope, key: key}] = id
}

func (r *RunContext) lookupRemoteCategory(remoteID int) (int64, bool) {
	id, ok := r.categoryByRemoteID[remoteID]
	return id, ok
}

func (r *RunContext) storeRemoteCategory(remoteID int, localID int64) {
	r.categoryByRemoteID[remoteID] = localID
}

// normalizeKey folds a natural key for matching: trimmed and lowercased.
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
