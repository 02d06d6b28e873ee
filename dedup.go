package iconstage

// dedupTable tracks the one in-flight request per item and the alternates
// queued behind it. It is owned by the worker goroutine.
type dedupTable struct {
	entries map[*Item][]*Request
}

func newDedupTable() *dedupTable {
	return &dedupTable{entries: make(map[*Item][]*Request)}
}

// admit reserves the item for req. If the item is already in flight, req is
// appended to its alternates and admit returns false.
func (t *dedupTable) admit(req *Request) bool {
	alts, busy := t.entries[req.Item]
	if busy {
		t.entries[req.Item] = append(alts, req)
		return false
	}
	t.entries[req.Item] = nil
	return true
}

// release ends the in-flight job of item. The oldest alternate, if any,
// becomes the new in-flight request and is returned; otherwise the item
// leaves the table.
func (t *dedupTable) release(item *Item) (*Request, bool) {
	alts, ok := t.entries[item]
	if !ok {
		return nil, false
	}
	if len(alts) == 0 {
		delete(t.entries, item)
		return nil, false
	}
	next := alts[0]
	alts[0] = nil
	t.entries[item] = alts[1:]
	return next, true
}

func (t *dedupTable) inFlight(item *Item) bool {
	_, ok := t.entries[item]
	return ok
}

func (t *dedupTable) alternates(item *Item) int {
	return len(t.entries[item])
}

func (t *dedupTable) len() int {
	return len(t.entries)
}
