package inline

import (
	"strings"

	"github.com/leonardomso/gfmlink/internal/document"
)

// piece is one element of a parsed range before emphasis is resolved.
// Delimiter runs carry a delimiter; everything else is a finished node.
type piece struct {
	node  *document.Node
	delim *delimiter
}

type delimiter struct {
	char     byte
	count    int
	orig     int
	canOpen  bool
	canClose bool
}

// elem is a piece in the list finish rewrites. Delimiter elems are also
// linked into the delimiter stack through below and above.
type elem struct {
	piece
	idx          int
	next         *elem
	below, above *elem
}

// bottomKey selects the closers that share an opener search bound.
type bottomKey struct {
	char    byte
	canOpen bool
	mod     int
}

// finish pairs emphasis delimiters and returns the final nodes. Closers are
// visited left to right and matched with the nearest compatible opener.
// A closer that finds no opener raises the search bound for later closers
// of the same kind.
func finish(pieces []piece) []*document.Node {
	var head, tail, first, last *elem
	for i, p := range pieces {
		e := &elem{piece: p, idx: i}
		if tail == nil {
			head = e
		} else {
			tail.next = e
		}
		tail = e

		if p.delim != nil {
			e.below = last
			if last == nil {
				first = e
			} else {
				last.above = e
			}
			last = e
		}
	}

	bottoms := map[bottomKey]int{}
	for closer := first; closer != nil; {
		cd := closer.delim
		if !cd.canClose || cd.count == 0 {
			closer = closer.above
			continue
		}

		key := bottomKey{char: cd.char, canOpen: cd.canOpen, mod: cd.orig % 3}
		bottom, ok := bottoms[key]
		if !ok {
			bottom = -1
		}
		opener := closer.below
		for opener != nil && opener.idx > bottom && !pairs(opener.delim, cd) {
			opener = opener.below
		}

		if opener == nil || opener.idx <= bottom {
			if closer.below != nil {
				bottoms[key] = max(bottom, closer.below.idx)
			}
			next := closer.above
			if !cd.canOpen {
				closer.unstack()
			}
			closer = next
			continue
		}

		od := opener.delim
		use, kind := 1, document.Emphasis
		if od.count >= 2 && cd.count >= 2 {
			use, kind = 2, document.Strong
		}
		od.count -= use
		cd.count -= use
		opener.node.Text = strings.Repeat(string(od.char), od.count)
		closer.node.Text = strings.Repeat(string(cd.char), cd.count)

		var inner []piece
		for e := opener.next; e != closer; e = e.next {
			inner = append(inner, e.piece)
		}
		wrapped := document.NewNode(kind, nodes(inner)...)
		wrapped.MergeText()

		w := &elem{piece: piece{node: wrapped}, idx: opener.idx, next: closer}
		opener.next = w
		opener.above = closer
		closer.below = opener

		if od.count == 0 {
			opener.unstack()
		}
		if cd.count == 0 {
			next := closer.above
			closer.unstack()
			closer = next
		}
	}

	var out []piece
	for e := head; e != nil; e = e.next {
		out = append(out, e.piece)
	}
	return merge(nodes(out))
}

// unstack removes e from the delimiter stack.
func (e *elem) unstack() {
	if e.below != nil {
		e.below.above = e.above
	}
	if e.above != nil {
		e.above.below = e.below
	}
	e.below, e.above = nil, nil
}

// pairs reports whether opener can close with closer, applying the rule
// of three for runs that can both open and close.
func pairs(opener, closer *delimiter) bool {
	if opener.char != closer.char || !opener.canOpen || opener.count == 0 {
		return false
	}
	if (opener.canClose || closer.canOpen) &&
		(opener.orig+closer.orig)%3 == 0 &&
		(opener.orig%3 != 0 || closer.orig%3 != 0) {
		return false
	}
	return true
}

// nodes flattens pieces, turning leftover delimiters into text.
func nodes(pieces []piece) []*document.Node {
	out := make([]*document.Node, 0, len(pieces))
	for _, p := range pieces {
		if p.delim != nil {
			if p.delim.count == 0 {
				continue
			}
			out = append(out, document.NewText(p.node.Text))
			continue
		}
		out = append(out, p.node)
	}
	return out
}

func merge(ns []*document.Node) []*document.Node {
	parent := document.NewNode(document.Paragraph, ns...)
	parent.MergeText()
	return parent.Children
}
