// SPDX-License-Identifier: Apache-2.0
/*
Copyright (C) 2026 The Falco Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package container

import (
	"unsafe"

	"github.com/falcosecurity/modbound-go/pkg/log"
	"github.com/falcosecurity/modbound-go/pkg/modbound"
)

type node[E any] struct {
	prev  *node[E]
	next  *node[E]
	value E
}

// List is a doubly linked list whose nodes are allocated one by one
// through a module-bound allocator rebound to the node type.
type List[E any, P modbound.Policy] struct {
	nodes modbound.Allocator[node[E], P]
	head  *node[E]
	tail  *node[E]
	len   int
}

// NewList returns an empty list whose nodes are allocated through the
// binding of alloc. The allocator is converted to the internal node type
// keeping its raw pair, which fails with modbound.ErrKindMismatch when
// the policy is Deduced and E is an array type: nodes are single objects.
func NewList[E any, P modbound.Policy](alloc modbound.Allocator[E, P]) (*List[E, P], error) {
	if err := checkElem[E](); err != nil {
		return nil, err
	}
	nodes, err := modbound.MoveAs[node[E], P](alloc)
	if err != nil {
		return nil, err
	}
	return &List[E, P]{nodes: nodes}, nil
}

// Allocator returns the node allocator of the list.
func (l *List[E, P]) Allocator() modbound.Allocator[node[E], P] {
	return l.nodes
}

// Len returns the number of elements.
func (l *List[E, P]) Len() int {
	return l.len
}

func (l *List[E, P]) newNode(value E) (*node[E], error) {
	p, err := l.nodes.Allocate(1)
	if err != nil {
		return nil, err
	}
	n := (*node[E])(p)
	*n = node[E]{value: value}
	return n, nil
}

func (l *List[E, P]) freeNode(n *node[E]) {
	l.nodes.Deallocate(unsafe.Pointer(n), 1)
}

func (l *List[E, P]) linkBack(n *node[E]) {
	n.prev, n.next = l.tail, nil
	if l.tail == nil {
		l.head = n
	} else {
		l.tail.next = n
	}
	l.tail = n
	l.len++
}

// PushBack appends value.
func (l *List[E, P]) PushBack(value E) error {
	n, err := l.newNode(value)
	if err != nil {
		return err
	}
	l.linkBack(n)
	return nil
}

// PushFront prepends value.
func (l *List[E, P]) PushFront(value E) error {
	n, err := l.newNode(value)
	if err != nil {
		return err
	}
	n.next = l.head
	if l.head == nil {
		l.tail = n
	} else {
		l.head.prev = n
	}
	l.head = n
	l.len++
	return nil
}

func (l *List[E, P]) unlink(n *node[E]) {
	if n.prev == nil {
		l.head = n.next
	} else {
		n.prev.next = n.next
	}
	if n.next == nil {
		l.tail = n.prev
	} else {
		n.next.prev = n.prev
	}
	l.len--
}

// PopFront removes and returns the first element.
func (l *List[E, P]) PopFront() (E, error) {
	if l.head == nil {
		var zero E
		return zero, ErrEmpty
	}
	n := l.head
	l.unlink(n)
	value := n.value
	l.freeNode(n)
	return value, nil
}

// PopBack removes and returns the last element.
func (l *List[E, P]) PopBack() (E, error) {
	if l.tail == nil {
		var zero E
		return zero, ErrEmpty
	}
	n := l.tail
	l.unlink(n)
	value := n.value
	l.freeNode(n)
	return value, nil
}

// Values returns a copy of the elements, front to back.
func (l *List[E, P]) Values() []E {
	values := make([]E, 0, l.len)
	for n := l.head; n != nil; n = n.next {
		values = append(values, n.value)
	}
	return values
}

// Free releases all the nodes through the node allocator.
func (l *List[E, P]) Free() {
	for n := l.head; n != nil; {
		next := n.next
		l.freeNode(n)
		n = next
	}
	l.head, l.tail, l.len = nil, nil, 0
}

// Clone returns a copy of l whose allocator is a copy of the allocator
// of l, which binds it to the calling module.
func (l *List[E, P]) Clone() (*List[E, P], error) {
	c := &List[E, P]{nodes: l.nodes.Copy()}
	for n := l.head; n != nil; n = n.next {
		if err := c.PushBack(n.value); err != nil {
			c.Free()
			return nil, err
		}
	}
	return c, nil
}

// Splice moves all the elements of o to the back of l. Nodes are
// relinked when the allocators are equal, otherwise they are copied into
// nodes of l and released through the allocator of o. o is empty
// afterwards, unless an allocation fails, in which case the elements not
// moved yet stay in o.
func (l *List[E, P]) Splice(o *List[E, P]) error {
	if l == o || o.head == nil {
		return nil
	}
	if l.nodes.Equal(o.nodes) {
		o.head.prev = l.tail
		if l.tail == nil {
			l.head = o.head
		} else {
			l.tail.next = o.head
		}
		l.tail = o.tail
		l.len += o.len
		o.head, o.tail, o.len = nil, nil, 0
		return nil
	}

	log.WithPrefix("container").
		WithField("from", o.nodes.Operators().String()).
		WithField("to", l.nodes.Operators().String()).
		Debug("splicing lists with non-interchangeable allocators")

	for o.head != nil {
		n, err := l.newNode(o.head.value)
		if err != nil {
			return err
		}
		l.linkBack(n)
		old := o.head
		o.unlink(old)
		o.freeNode(old)
	}
	return nil
}
