package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitWindow_ShortTextSingleWindow(t *testing.T) {
	windows := splitWindow("a short paragraph of text", 1000, 100)
	require.Len(t, windows, 1)
	assert.Equal(t, "a short paragraph of text", windows[0])
}

func TestSplitWindow_EmptyTextNoWindows(t *testing.T) {
	assert.Empty(t, splitWindow("", 1000, 100))
	assert.Empty(t, splitWindow("   ", 1000, 100))
}

func TestSplitWindow_PrefersParagraphBreakOverHardCut(t *testing.T) {
	first := strings.Repeat("a", 60)
	second := strings.Repeat("b", 60)
	text := first + "\n\n" + second

	windows := splitWindow(text, 70, 10)
	require.NotEmpty(t, windows)
	assert.True(t, strings.HasSuffix(windows[0], "a"))
	assert.False(t, strings.Contains(windows[0], "b"))
}

func TestSplitWindow_OverlapRepeatsTailInNextWindow(t *testing.T) {
	text := strings.Repeat("x", 500)
	windows := splitWindow(text, 200, 50)
	require.True(t, len(windows) >= 2)
	assert.Equal(t, windows[0][len(windows[0])-50:], windows[1][:50])
}

func TestSplitWindow_FallsBackToHardBoundaryWithoutBreaks(t *testing.T) {
	text := strings.Repeat("x", 250)
	windows := splitWindow(text, 100, 10)
	require.True(t, len(windows) >= 2)
	for _, w := range windows {
		assert.LessOrEqual(t, len([]rune(w)), 100)
	}
}
