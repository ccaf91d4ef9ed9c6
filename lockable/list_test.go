package lockable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomapper/maperr"
)

func TestList_Mutation(t *testing.T) {
	l := New(1, 2)
	require.NoError(t, l.Add(4))
	require.NoError(t, l.Insert(2, 3))
	assert.Equal(t, []int{1, 2, 3, 4}, l.Items())

	require.NoError(t, l.Remove(0))
	assert.Equal(t, []int{2, 3, 4}, l.Items())

	require.NoError(t, l.RemoveFunc(func(v int) bool { return v%2 == 0 }))
	assert.Equal(t, []int{3}, l.Items())

	assert.Error(t, l.Insert(5, 9))
	assert.Error(t, l.Remove(1))

	require.NoError(t, l.Clear())
	assert.Equal(t, 0, l.Len())
}

func TestList_LockedRejectsMutation(t *testing.T) {
	l := New("a").Lock()

	for name, fn := range map[string]func() error{
		"add":    func() error { return l.Add("b") },
		"insert": func() error { return l.Insert(0, "b") },
		"remove": func() error { return l.Remove(0) },
		"clear":  l.Clear,
	} {
		t.Run(name, func(t *testing.T) {
			err := fn()
			require.Error(t, err)
			assert.ErrorIs(t, err, maperr.ErrReadOnly)
		})
	}
	assert.Equal(t, []string{"a"}, l.Items())
}

func TestList_SnapshotIsIndependent(t *testing.T) {
	l := New(1, 2, 3)
	snap := l.Snapshot()
	require.NoError(t, l.Add(4))

	assert.True(t, snap.Locked())
	assert.False(t, l.Locked())
	assert.Equal(t, []int{1, 2, 3}, snap.Items())
}

func TestList_Iteration(t *testing.T) {
	l := New("a", "b", "c")

	var fwd, back []string
	for _, v := range l.All() {
		fwd = append(fwd, v)
	}
	for _, v := range l.Backward() {
		back = append(back, v)
	}

	assert.Equal(t, []string{"a", "b", "c"}, fwd)
	assert.Equal(t, []string{"c", "b", "a"}, back)

	var nilList *List[string]
	assert.Equal(t, 0, nilList.Len())
	for range nilList.All() {
		t.Fatal("nil list must not yield")
	}
}
