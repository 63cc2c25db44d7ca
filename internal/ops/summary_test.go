package ops

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/perch/internal/errors"
	"github.com/hpungsan/perch/internal/grid"
)

func TestSummarize_Seed(t *testing.T) {
	s := Summarize(NewDesktop(grid.Seed()))

	require.Equal(t, grid.DesktopSlots, s.Capacity)
	require.Equal(t, 3, s.Used)
	require.Equal(t, grid.DesktopSlots-3, s.Free)
	require.Len(t, s.Items, 3)

	require.Equal(t, SlotSummary{Slot: 2, Kind: "link", ID: "single-link", Title: "Traveler's Log", URL: grid.DefaultLink().URL}, s.Items[0])
	require.Equal(t, "folder", s.Items[1].Kind)
	require.Equal(t, grid.Size2x2, s.Items[1].Size)
	require.Equal(t, 4, s.Items[1].Links)
	require.Equal(t, 9, s.Items[2].Links)
}

func TestSummarizeFolder(t *testing.T) {
	d := NewDesktop(grid.Seed())
	d, _, err := SetFolderSize(d, "folder-3x3", grid.Size2x2)
	require.NoError(t, err)

	f, err := SummarizeFolder(d, "folder-3x3")
	require.NoError(t, err)
	require.Equal(t, 4, f.Slot)
	require.Equal(t, 4, f.Capacity)
	require.Len(t, f.Links, 9)
	require.Equal(t, 5, f.Hidden)

	_, err = SummarizeFolder(d, "nope")
	require.True(t, errors.Is(err, errors.ErrNotFound))
}
