package availability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paiban/paiban/pkg/scheduler/model"
)

func TestStaticProviderReturnsSetWindows(t *testing.T) {
	p := NewStaticProvider().Set("V1", "2026-02-01", model.Window{Start: 28800, End: 61200})

	windows, err := p.Windows(context.Background(), "V1", "2026-02-01")
	require.NoError(t, err)
	require.Equal(t, []model.Window{{Start: 28800, End: 61200}}, windows)
}

func TestStaticProviderUnknownVisitorIsUnavailable(t *testing.T) {
	p := NewStaticProvider()
	windows, err := p.Windows(context.Background(), "ghost", "2026-02-01")
	require.NoError(t, err)
	require.Nil(t, windows)
}

func TestOuterBoundCollapsesMultipleWindows(t *testing.T) {
	windows := []model.Window{{Start: 28800, End: 43200}, {Start: 46800, End: 61200}}
	bound, ok := OuterBound(windows)
	require.True(t, ok)
	require.Equal(t, model.Window{Start: 28800, End: 61200}, bound)
}

func TestOuterBoundEmptyIsUnavailable(t *testing.T) {
	_, ok := OuterBound(nil)
	require.False(t, ok)
}
