package container

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	t.Run("Remove By Handle", func(t *testing.T) {
		l := NewList[string]()
		a := l.PushBack("a")
		b := l.PushBack("b")
		c := l.PushBack("c")
		require.Equal(t, 3, l.Len())

		require.True(t, l.Remove(b))
		require.False(t, l.Remove(b))
		require.False(t, b.Linked())
		require.Equal(t, []string{"a", "c"}, l.Values(nil))
		require.Equal(t, c, a.Next())
		require.Nil(t, c.Next())
	})

	t.Run("Foreign Node", func(t *testing.T) {
		l1 := NewList[int]()
		l2 := NewList[int]()
		n := l1.PushBack(1)
		require.False(t, l2.Remove(n))
		require.Equal(t, 1, l1.Len())
	})

	t.Run("Remove While Iterating", func(t *testing.T) {
		l := NewList[int]()
		for i := 0; i < 6; i++ {
			l.PushBack(i)
		}
		l.Each(func(n *Node[int]) bool {
			if n.Value%2 == 0 {
				l.Remove(n)
			}
			return true
		})
		require.Equal(t, []int{1, 3, 5}, l.Values(nil))
		require.Equal(t, 1, l.Front().Value)
	})
}
