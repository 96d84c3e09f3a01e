package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalConnector_ItemsOneEntryPerRoot(t *testing.T) {
	c := &LocalConnector{Roots: []string{"/a", "/b"}}

	items, err := c.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "local", items[0].Source)
	assert.Equal(t, "/a", items[0].PathOrID)
	assert.Equal(t, "/b", items[1].PathOrID)
}

func TestLocalConnector_MaterializeIsIdentity(t *testing.T) {
	c := &LocalConnector{}
	path, err := c.Materialize(context.Background(), Item{PathOrID: "/some/path"})
	require.NoError(t, err)
	assert.Equal(t, "/some/path", path)
}

func TestMaterializeRoots_FlattensAcrossConnectors(t *testing.T) {
	a := &LocalConnector{Roots: []string{"/docs"}}
	b := &LocalConnector{Roots: []string{"/notes", "/archive"}}

	roots, err := MaterializeRoots(context.Background(), []Connector{a, b})
	require.NoError(t, err)
	assert.Equal(t, []string{"/docs", "/notes", "/archive"}, roots)
}

type failingConnector struct{}

func (failingConnector) Items(ctx context.Context) ([]Item, error) {
	return nil, errors.New("remote unavailable")
}
func (failingConnector) Materialize(ctx context.Context, item Item) (string, error) {
	return "", nil
}

func TestMaterializeRoots_PropagatesItemsError(t *testing.T) {
	_, err := MaterializeRoots(context.Background(), []Connector{failingConnector{}})
	assert.Error(t, err)
}

type badMaterializeConnector struct{}

func (badMaterializeConnector) Items(ctx context.Context) ([]Item, error) {
	return []Item{{ID: "1", Source: "test", PathOrID: "missing"}}, nil
}
func (badMaterializeConnector) Materialize(ctx context.Context, item Item) (string, error) {
	return "", errors.New("blob fetch failed")
}

func TestMaterializeRoots_PropagatesMaterializeError(t *testing.T) {
	_, err := MaterializeRoots(context.Background(), []Connector{badMaterializeConnector{}})
	assert.Error(t, err)
}
