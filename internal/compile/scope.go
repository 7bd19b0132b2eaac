package compile

import "github.com/GavinRay97/morel/internal/core"

// frameInfo is shared by every scope belonging to the same runtime Frame:
// a Let, a Match arm, or a relational node's row-variable binding all
// extend the current lexical scope without starting a new call frame, so
// they all point at the same frameInfo and simply grow its Size. Only a
// Lam body starts a genuinely new frameInfo, because only a Lam
// application allocates a new runtime Frame (see Closure/Apply in
// apply.go).
type frameInfo struct {
	size int
}

// scope is the compile-time counterpart of spec §4.6's slot addressing:
// every Core Ident gets bound to a slot number in some frameInfo, and
// resolving a reference later counts how many frameInfo boundaries (not
// how many scope values) separate the reference from its binder — that
// count is exactly the number of Frame.Parent hops the compiled code
// must follow at runtime.
type scope struct {
	parent *scope
	frame  *frameInfo
	ids    map[core.Ident]int
}

// newScope starts the single root scope compiling one top-level Decl
// begins in: one fresh frameInfo, no parent.
func newScope() *scope {
	return &scope{frame: &frameInfo{}, ids: map[core.Ident]int{}}
}

// child extends s with a new lexical link that reuses s's own frameInfo
// — used by Let, a Match arm's payload binding, and a relational node's
// row-variable binding, none of which need a new runtime Frame.
func (s *scope) child() *scope {
	return &scope{parent: s, frame: s.frame, ids: map[core.Ident]int{}}
}

// lambda extends s with a new lexical link over a brand new frameInfo —
// used only for a Lam's own body, since only a Lam application allocates
// a fresh runtime Frame.
func (s *scope) lambda() *scope {
	return &scope{parent: s, frame: &frameInfo{}, ids: map[core.Ident]int{}}
}

// bind records id as occupying the next free slot in s's current
// frameInfo and returns that slot number.
func (s *scope) bind(id core.Ident) int {
	slot := s.freshSlot()
	s.ids[id] = slot
	return slot
}

// freshSlot allocates a new slot in s's current frameInfo with no
// associated Ident — used for purely internal bookkeeping storage (a
// relational Project's own cached per-row output value) that nothing
// will ever resolve by name.
func (s *scope) freshSlot() int {
	slot := s.frame.size
	s.frame.size++
	return slot
}

// resolve finds the (depth, slot) address of id: depth is how many
// distinct frameInfo boundaries lie between s and id's binder, slot is
// id's slot number within that frameInfo.
func (s *scope) resolve(id core.Ident) (depth, slot int, ok bool) {
	cur := s
	depth = 0
	for cur != nil {
		if slot, found := cur.ids[id]; found {
			return depth, slot, true
		}
		if cur.parent != nil && cur.parent.frame != cur.frame {
			depth++
		}
		cur = cur.parent
	}
	return 0, 0, false
}
