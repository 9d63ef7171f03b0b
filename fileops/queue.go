/*
Package fileops implements copy, move and delete over directory trees.
Traversal uses an explicit FIFO queue of (src, dst) pairs instead of
recursion so a pathological tree can't blow the stack, and each regular
file copy replays the source's extended attributes. Long operations run
in a worker subprocess that streams progress tuples up a pipe; the
dispatcher polls that pipe non-blockingly every loop iteration.
*/
package fileops

// queue.go: the traversal queue. A plain slice-backed FIFO; the 10k
// warning mirrors the depth at which something is probably wrong with
// the tree being walked.

import (
	log "github.com/sirupsen/logrus"
)

// PathPair is one queued traversal unit.
type PathPair struct {
	Src string
	Dst string // empty for delete-only traversals
}

// Queue is a FIFO of path pairs.
type Queue struct {
	items []PathPair
	head  int
}

// Push appends a pair.
func (q *Queue) Push(src, dst string) {
	q.items = append(q.items, PathPair{Src: src, Dst: dst})
	if q.Len() == 10000 {
		log.Warn("directory queue size exceeds 10000 entries")
	}
}

// Pop removes and returns the oldest pair; ok=false when empty.
func (q *Queue) Pop() (PathPair, bool) {
	if q.head >= len(q.items) {
		return PathPair{}, false
	}
	p := q.items[q.head]
	q.head++
	// Reclaim the backing array once everything has drained.
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return p, true
}

// Len reports how many pairs are waiting.
func (q *Queue) Len() int {
	return len(q.items) - q.head
}
