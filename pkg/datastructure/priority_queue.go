package datastructure

import "errors"

var (
	ErrEmptyQueue   = errors.New("priority queue is empty")
	ErrItemNotFound = errors.New("item not found in priority queue")
)

type PriorityQueueNode[T comparable] struct {
	Rank float64
	Item T
	seq  uint64
}

func NewPriorityQueueNode[T comparable](rank float64, item T) PriorityQueueNode[T] {
	return PriorityQueueNode[T]{Rank: rank, Item: item}
}

// MinHeap binary heap priorityqueue with an item index for decrease-key.
// Equal ranks are popped in insertion order.
type MinHeap[T comparable] struct {
	heap    []PriorityQueueNode[T]
	pos     map[T]int
	counter uint64
}

func NewMinHeap[T comparable]() *MinHeap[T] {
	return &MinHeap[T]{
		heap: make([]PriorityQueueNode[T], 0),
		pos:  make(map[T]int),
	}
}

func (h *MinHeap[T]) parent(index int) int {
	return (index - 1) / 2
}

func (h *MinHeap[T]) leftChild(index int) int {
	return 2*index + 1
}

func (h *MinHeap[T]) rightChild(index int) int {
	return 2*index + 2
}

func (h *MinHeap[T]) less(i, j int) bool {
	if h.heap[i].Rank != h.heap[j].Rank {
		return h.heap[i].Rank < h.heap[j].Rank
	}
	return h.heap[i].seq < h.heap[j].seq
}

func (h *MinHeap[T]) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.pos[h.heap[i].Item] = i
	h.pos[h.heap[j].Item] = j
}

// heapifyUp swaps index with its parent while it ranks lower. O(logN).
func (h *MinHeap[T]) heapifyUp(index int) {
	for index != 0 && h.less(index, h.parent(index)) {
		h.swap(index, h.parent(index))
		index = h.parent(index)
	}
}

// heapifyDown swaps index with its smallest child while that child ranks lower. O(logN).
func (h *MinHeap[T]) heapifyDown(index int) {
	for {
		smallest := index
		left := h.leftChild(index)
		right := h.rightChild(index)

		if left < len(h.heap) && h.less(left, smallest) {
			smallest = left
		}
		if right < len(h.heap) && h.less(right, smallest) {
			smallest = right
		}
		if smallest == index {
			return
		}
		h.swap(index, smallest)
		index = smallest
	}
}

func (h *MinHeap[T]) isEmpty() bool {
	return len(h.heap) == 0
}

func (h *MinHeap[T]) Size() int {
	return len(h.heap)
}

// Contains reports whether item is currently queued.
func (h *MinHeap[T]) Contains(item T) bool {
	_, ok := h.pos[item]
	return ok
}

func (h *MinHeap[T]) GetMin() (PriorityQueueNode[T], error) {
	if h.isEmpty() {
		return PriorityQueueNode[T]{}, ErrEmptyQueue
	}
	return h.heap[0], nil
}

// Insert adds key. If the item is already queued its rank is replaced instead.
func (h *MinHeap[T]) Insert(key PriorityQueueNode[T]) {
	if index, ok := h.pos[key.Item]; ok {
		h.update(index, key.Rank)
		return
	}
	key.seq = h.counter
	h.counter++
	h.heap = append(h.heap, key)
	index := len(h.heap) - 1
	h.pos[key.Item] = index
	h.heapifyUp(index)
}

// ExtractMin pops the lowest ranked item. O(logN).
func (h *MinHeap[T]) ExtractMin() (PriorityQueueNode[T], error) {
	if h.isEmpty() {
		return PriorityQueueNode[T]{}, ErrEmptyQueue
	}
	root := h.heap[0]
	last := len(h.heap) - 1
	h.swap(0, last)
	h.heap = h.heap[:last]
	delete(h.pos, root.Item)
	if len(h.heap) > 0 {
		h.heapifyDown(0)
	}
	return root, nil
}

// DecreaseKey lowers the rank of a queued item to item.Rank.
func (h *MinHeap[T]) DecreaseKey(item PriorityQueueNode[T]) error {
	index, ok := h.pos[item.Item]
	if !ok {
		return ErrItemNotFound
	}
	h.update(index, item.Rank)
	return nil
}

func (h *MinHeap[T]) update(index int, rank float64) {
	old := h.heap[index].Rank
	h.heap[index].Rank = rank
	if rank < old {
		h.heapifyUp(index)
	} else {
		h.heapifyDown(index)
	}
}

// Clear empties the heap, keeping its backing storage.
func (h *MinHeap[T]) Clear() {
	h.heap = h.heap[:0]
	h.pos = make(map[T]int)
	h.counter = 0
}
