package container

import "fmt"

// IHasVAndLength 具有速度和长度属性的接口
// 功能：定义车辆作为链表元素时需要的关键信息接口
// 说明：便于在链表中快速访问元素的速度和长度信息
type IHasVAndLength interface {
	V() float64      // 获取速度
	Length() float64 // 获取长度
}

// ListNode 双向链表中的节点
// 功能：表示双向链表中的一个节点
// 说明：S为键值（到停车线的距离），链表按S从小到大有序
type ListNode[T IHasVAndLength] struct {
	parent     *List[T]     // 所属链表
	prev, next *ListNode[T] // 前驱和后继节点
	S          float64      // 键值（到停车线的距离）
	Value      T            // 主要值
}

// String 获取节点的字符串表示
func (n *ListNode[T]) String() string {
	return fmt.Sprintf("Node{S:%v, Value:%+v}", n.S, n.Value)
}

// Prev 获取节点的前一个节点
// 返回：前驱节点指针，如果是第一个节点则返回nil
func (n *ListNode[T]) Prev() *ListNode[T] {
	return n.prev
}

// Next 获取节点的后一个节点
// 返回：后继节点指针，如果是最后一个节点则返回nil
func (n *ListNode[T]) Next() *ListNode[T] {
	return n.next
}

// Remove 将节点从所属链表中移除
// 功能：断开节点的前驱后继关系并维护链表长度
// 说明：节点不在链表中时panic
func (n *ListNode[T]) Remove() {
	if n.parent == nil {
		panic("container: remove node not in a list")
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		n.parent.first = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		n.parent.last = n.prev
	}
	n.parent.length--
	n.parent = nil
	n.prev = nil
	n.next = nil
}

// List 按键值有序的双向链表
// 功能：维护一个按S升序排列的节点序列
// 说明：用于表达进口道上按停车线距离排队的车辆
type List[T IHasVAndLength] struct {
	first, last *ListNode[T]
	length      int
}

// Len 获取链表长度
func (l *List[T]) Len() int {
	return l.length
}

// First 获取第一个节点（S最小）
// 返回：第一个节点指针，链表为空时返回nil
func (l *List[T]) First() *ListNode[T] {
	return l.first
}

// Last 获取最后一个节点（S最大）
// 返回：最后一个节点指针，链表为空时返回nil
func (l *List[T]) Last() *ListNode[T] {
	return l.last
}

// Insert 按键值有序插入节点
// 功能：从链表尾部向前查找插入位置，保持S升序
// 参数：node-待插入节点
// 说明：车辆到达时S最大（在队尾），因此从尾部查找平均为O(1)
func (l *List[T]) Insert(node *ListNode[T]) {
	if node.parent != nil {
		panic("container: insert node already in a list")
	}
	node.parent = l
	l.length++
	if l.last == nil {
		l.first = node
		l.last = node
		return
	}
	at := l.last
	for at != nil && at.S > node.S {
		at = at.prev
	}
	if at == nil {
		// 插入到头部
		node.next = l.first
		l.first.prev = node
		l.first = node
		return
	}
	node.prev = at
	node.next = at.next
	if at.next != nil {
		at.next.prev = node
	} else {
		l.last = node
	}
	at.next = node
}

// Keys 获取所有节点的键值
// 功能：按顺序返回链表中所有节点的S值
// 说明：主要用于调试与测试
func (l *List[T]) Keys() []float64 {
	keys := make([]float64, 0, l.length)
	for n := l.first; n != nil; n = n.next {
		keys = append(keys, n.S)
	}
	return keys
}
