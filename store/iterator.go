package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/hlwallet/errors"
)

// ascendBtree collects all btree items within the [start, end) range in
// ascending order. Cache layers are small, so materializing the items keeps
// Release synchronous and does not leave any goroutine behind.
func ascendBtree(bt *btree.BTree, start, end []byte) []cacheItem {
	var res []cacheItem
	insert := func(item btree.Item) bool {
		res = append(res, item.(cacheItem))
		return true
	}

	if start == nil && end == nil {
		bt.Ascend(insert)
	} else if start == nil { // end != nil
		bt.AscendLessThan(cacheItem{key: end}, insert)
	} else if end == nil { // start != nil
		bt.AscendGreaterOrEqual(cacheItem{key: start}, insert)
	} else { // both != nil
		bt.AscendRange(cacheItem{key: start}, cacheItem{key: end}, insert)
	}
	return res
}

// descendBtree collects all btree items within the [start, end) range in
// descending order.
func descendBtree(bt *btree.BTree, start, end []byte) []cacheItem {
	var res []cacheItem
	insert := func(item btree.Item) bool {
		res = append(res, item.(cacheItem))
		return true
	}

	if start == nil && end == nil {
		bt.Descend(insert)
	} else if start == nil { // end != nil
		bt.DescendLessOrEqual(keyBefore(end), insert)
	} else if end == nil { // start != nil
		bt.DescendGreaterThan(keyBefore(start), insert)
	} else { // both != nil
		bt.DescendRange(keyBefore(end), keyBefore(start), insert)
	}
	return res
}

// source marks where the current item comes from
type source int32

const (
	us source = iota
	parent
	both
	none
)

// itemIter combines our cached items with the results of the parent,
// taking into consideration overwrites and deletes.
type itemIter struct {
	items []cacheItem
	idx   int

	// if we are iterating in a cache-wrap (and who isn't),
	// we need to combine this iterator with the parent
	parent *peekIter

	reverse bool
}

var _ Iterator = (*itemIter)(nil)

func newItemIter(items []cacheItem, parentIter Iterator, reverse bool) (*itemIter, error) {
	p, err := newPeekIter(parentIter)
	if err != nil {
		parentIter.Release()
		return nil, err
	}
	return &itemIter{
		items:   items,
		parent:  p,
		reverse: reverse,
	}, nil
}

// Next implements Iterator. Deleted items are skipped, items present in both
// the cache and the parent are returned once, with the cached value.
func (i *itemIter) Next() (key, value []byte, err error) {
	for {
		switch i.firstKey() {
		case none:
			return nil, nil, errors.Wrap(errors.ErrIteratorDone, "btree iterator")
		case parent:
			key, value = i.parent.key, i.parent.value
			if err := i.parent.advance(); err != nil {
				return nil, nil, err
			}
			return key, value, nil
		case both:
			if err := i.parent.advance(); err != nil {
				return nil, nil, err
			}
			fallthrough
		case us:
			item := i.items[i.idx]
			i.idx++
			if !item.deleted {
				return item.key, item.value, nil
			}
		}
	}
}

// Release releases the Iterator.
func (i *itemIter) Release() {
	i.parent.it.Release()
	i.items = nil
}

// firstKey selects the iterator with the lowest key is any, or the highest
// key when iterating in the reverse order
func (i *itemIter) firstKey() source {
	usValid := i.idx < len(i.items)
	// if only one or none is valid, it is clear which to use
	if !i.parent.valid {
		if !usValid {
			return none
		}
		return us
	} else if !usValid {
		return parent
	}

	// both are valid... compare keys....
	cmp := bytes.Compare(i.parent.key, i.items[i.idx].key)
	if i.reverse {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return parent
	case cmp > 0:
		return us
	default:
		return both
	}
}

// peekIter keeps the next element of the wrapped iterator loaded so that it
// can be compared before being consumed.
type peekIter struct {
	it    Iterator
	key   []byte
	value []byte
	valid bool
}

func newPeekIter(it Iterator) (*peekIter, error) {
	p := &peekIter{it: it}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *peekIter) advance() error {
	key, value, err := p.it.Next()
	switch {
	case err == nil:
		p.key, p.value, p.valid = key, value, true
	case errors.ErrIteratorDone.Is(err):
		p.key, p.value, p.valid = nil, nil, false
	default:
		return err
	}
	return nil
}
