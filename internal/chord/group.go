// Package chord groups simultaneous notes and splits overlapping notes of a
// track into voices that can each be written as a sequence of chords.
package chord

import (
	"fmt"
	"iter"
)

const nilIndex = -1

// Member is a note in a Group.
type Member struct {
	// Note is the index of the note in its track.
	Note  int
	Pitch int
	// Remain is the number of parts the note still sounds for.
	Remain int
}

type node struct {
	Member
	prev, next int
}

// Group is the set of notes currently sounding, ordered by descending
// pitch. Removal is O(1) given the id returned by Insert.
type Group struct {
	nodes      []node
	free       []int
	head, tail int
	n          int
}

func NewGroup() *Group {
	return &Group{head: nilIndex, tail: nilIndex}
}

// Len returns the number of members.
func (g *Group) Len() int {
	return g.n
}

// Insert adds m keeping the descending pitch order and returns its id.
// Members of equal pitch keep their insertion order.
func (g *Group) Insert(m Member) int {
	var id int
	if len(g.free) > 0 {
		id = g.free[len(g.free)-1]
		g.free = g.free[:len(g.free)-1]
		g.nodes[id] = node{Member: m}
	} else {
		id = len(g.nodes)
		g.nodes = append(g.nodes, node{Member: m})
	}
	after := nilIndex
	for i := g.head; i != nilIndex && g.nodes[i].Pitch >= m.Pitch; i = g.nodes[i].next {
		after = i
	}
	nd := &g.nodes[id]
	nd.prev = after
	if after == nilIndex {
		nd.next = g.head
		g.head = id
	} else {
		nd.next = g.nodes[after].next
		g.nodes[after].next = id
	}
	if nd.next == nilIndex {
		g.tail = id
	} else {
		g.nodes[nd.next].prev = id
	}
	g.n++
	return id
}

// Remove unlinks the member with the given id.
func (g *Group) Remove(id int) {
	nd := &g.nodes[id]
	if nd.prev == nilIndex {
		g.head = nd.next
	} else {
		g.nodes[nd.prev].next = nd.next
	}
	if nd.next == nilIndex {
		g.tail = nd.prev
	} else {
		g.nodes[nd.next].prev = nd.prev
	}
	nd.prev, nd.next = nilIndex, nilIndex
	g.free = append(g.free, id)
	g.n--
}

// All yields the members from highest to lowest pitch.
func (g *Group) All() iter.Seq2[int, Member] {
	return func(yield func(int, Member) bool) {
		for i := g.head; i != nilIndex; {
			next := g.nodes[i].next
			if !yield(i, g.nodes[i].Member) {
				return
			}
			i = next
		}
	}
}

// MinRemain returns the shortest remaining length of any member, or 0 for
// an empty group.
func (g *Group) MinRemain() int {
	shortest := 0
	for _, m := range g.All() {
		if shortest == 0 || m.Remain < shortest {
			shortest = m.Remain
		}
	}
	return shortest
}

// Advance moves time forward by parts, removing the members that stop
// sounding. It returns the note indices removed.
func (g *Group) Advance(parts int) []int {
	var done []int
	for id := range g.All() {
		nd := &g.nodes[id]
		nd.Remain -= parts
		if nd.Remain <= 0 {
			done = append(done, nd.Note)
			g.Remove(id)
		}
	}
	return done
}

// Check verifies the links and ordering of the list.
func (g *Group) Check() error {
	count := 0
	prev := nilIndex
	for i := g.head; i != nilIndex; i = g.nodes[i].next {
		nd := g.nodes[i]
		if nd.prev != prev {
			return fmt.Errorf("member %d: prev is %d, want %d", i, nd.prev, prev)
		}
		if prev != nilIndex && g.nodes[prev].Pitch < nd.Pitch {
			return fmt.Errorf("member %d: pitch %d above %d", i, nd.Pitch, g.nodes[prev].Pitch)
		}
		prev = i
		count++
		if count > g.n {
			return fmt.Errorf("cycle after %d members", g.n)
		}
	}
	if prev != g.tail {
		return fmt.Errorf("tail is %d, want %d", g.tail, prev)
	}
	if count != g.n {
		return fmt.Errorf("%d members linked, %d counted", count, g.n)
	}
	return nil
}
