package explorer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/regview/internal/registry"
)

type countingCursor struct {
	items []registry.Target
	i     int
	pulls int
}

func newCountingCursor(n int) *countingCursor {
	c := &countingCursor{}
	for i := range n {
		c.items = append(c.items, registry.Target{Category: "route", Name: fmt.Sprintf("r%03d", i)})
	}
	return c
}

func (c *countingCursor) Next() (registry.Target, bool) {
	c.pulls++
	if c.i >= len(c.items) {
		return registry.Target{}, false
	}
	t := c.items[c.i]
	c.i++
	return t, true
}

func TestPager_ShowMoreResumes(t *testing.T) {
	cursor := newCountingCursor(250)
	p := NewPager(cursor, 100)

	require.Len(t, p.Pull(), 100)
	require.True(t, p.Offered())

	require.Len(t, p.ShowMore(), 100)
	require.Equal(t, 200, p.Len())
	require.True(t, p.Offered())

	require.Len(t, p.ShowMore(), 50)
	require.Equal(t, 250, p.Len())
	require.False(t, p.Offered())

	require.Equal(t, cursor.items, p.Rows(), "no duplicates or gaps")
}

func TestPager_ShowAllNeverReoffers(t *testing.T) {
	cursor := newCountingCursor(1000)
	p := NewPager(cursor, 100)
	p.Pull()

	require.Len(t, p.ShowAll(), 900)
	require.False(t, p.Offered())
	require.Nil(t, p.ShowAll())
	require.Nil(t, p.ShowMore())
	require.Equal(t, cursor.items, p.Rows())
}

func TestPager_ExactBatchIsNotOffered(t *testing.T) {
	p := NewPager(newCountingCursor(100), 100)
	require.Len(t, p.Pull(), 100)
	require.False(t, p.Offered())
	require.Nil(t, p.ShowMore())
}

func TestPager_ContinuationIsSingleUse(t *testing.T) {
	p := NewPager(newCountingCursor(150), 100)
	p.Pull()

	require.Len(t, p.ShowMore(), 50)
	require.Nil(t, p.ShowMore())
	require.Nil(t, p.ShowAll())
	require.Equal(t, 150, p.Len())
}

func TestPager_EmptyCursor(t *testing.T) {
	p := NewPager(newCountingCursor(0), 0)
	require.Empty(t, p.Pull())
	require.Zero(t, p.Len())
	require.False(t, p.Offered())
}

func TestPager_DoesNotReadPastExhaustion(t *testing.T) {
	cursor := newCountingCursor(3)
	p := NewPager(cursor, 10)
	p.Pull()
	p.Pull()
	require.Equal(t, 4, cursor.pulls)
}

func TestPager_ResumabilityProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		total := rapid.IntRange(0, 400).Draw(t, "total")
		batch := rapid.IntRange(1, 120).Draw(t, "batch")
		cursor := newCountingCursor(total)
		p := NewPager(cursor, batch)
		p.Pull()

		target := batch
		all := false
		for range rapid.IntRange(0, 6).Draw(t, "steps") {
			if !p.Offered() {
				break
			}
			if rapid.Bool().Draw(t, "showAll") {
				p.ShowAll()
				all = true
			} else {
				p.ShowMore()
				target += batch
			}
			if all {
				break
			}
		}

		want := min(total, target)
		if all {
			want = total
		}
		require.Equal(t, want, p.Len())
		require.Equal(t, cursor.items[:want], p.Rows())
		require.Equal(t, !all && total > target && p.Len() == target, p.Offered())
	})
}
