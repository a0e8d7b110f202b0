package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/treasury/errors"
)

// collectRange returns a snapshot of all cached items within [start, end) in
// ascending order. A nil bound is open.
func collectRange(bt *btree.BTree, start, end []byte) []keyer {
	var items []keyer
	insert := func(item btree.Item) bool {
		items = append(items, item.(keyer))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(insert)
	case start == nil:
		bt.AscendLessThan(bkey{end}, insert)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, insert)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, insert)
	}
	return items
}

// mergeIterator combines the cached items of a cache wrap with the iterator
// of its parent. Cached entries shadow the parent ones with the same key and
// deleted entries hide them.
type mergeIterator struct {
	ours      []keyer
	parent    Iterator
	ascending bool

	// peeked parent entry, valid when hasPeek is set
	pkey, pvalue []byte
	hasPeek      bool
	parentDone   bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(ours []keyer, parent Iterator, ascending bool) *mergeIterator {
	return &mergeIterator{
		ours:      ours,
		parent:    parent,
		ascending: ascending,
	}
}

func (m *mergeIterator) peekParent() error {
	if m.hasPeek || m.parentDone {
		return nil
	}
	k, v, err := m.parent.Next()
	switch {
	case err == nil:
		m.pkey, m.pvalue, m.hasPeek = k, v, true
	case errors.ErrIteratorDone.Is(err):
		m.parentDone = true
	default:
		return err
	}
	return nil
}

// Next returns the next visible entry in iteration order.
func (m *mergeIterator) Next() (key, value []byte, err error) {
	for {
		if err := m.peekParent(); err != nil {
			return nil, nil, err
		}
		if len(m.ours) == 0 {
			if !m.hasPeek {
				return nil, nil, errors.ErrIteratorDone
			}
			m.hasPeek = false
			return m.pkey, m.pvalue, nil
		}

		item := m.ours[0]
		if m.hasPeek {
			cmp := bytes.Compare(item.Key(), m.pkey)
			if !m.ascending {
				cmp = -cmp
			}
			if cmp > 0 {
				m.hasPeek = false
				return m.pkey, m.pvalue, nil
			}
			if cmp == 0 {
				// our entry overrides the parent one
				m.hasPeek = false
			}
		}

		m.ours = m.ours[1:]
		switch t := item.(type) {
		case setItem:
			return t.key, t.value, nil
		case deletedItem:
			continue
		default:
			return nil, nil, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", item)
		}
	}
}

// Release releases the parent iterator and the snapshot.
func (m *mergeIterator) Release() {
	m.parent.Release()
	m.ours = nil
}
