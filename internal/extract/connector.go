package extract

import (
	"context"
	"fmt"
)

// Item is one entry a Connector exposes from a non-local source (e.g. an
// OneDrive mirror, an Outlook mailbox snapshot). The core never talks to
// the remote service itself; it only consumes Items and materialized
// local blobs.
type Item struct {
	ID       string
	Source   string
	PathOrID string
	Metadata map[string]string
}

// Connector produces Items from a non-local source and deposits a
// locally-readable copy of one on demand. Once materialized, the core
// indexes the local path exactly like any filesystem entry — the
// Connector boundary is the only place source-specific logic lives.
type Connector interface {
	Items(ctx context.Context) ([]Item, error)
	Materialize(ctx context.Context, item Item) (string, error)
}

// LocalConnector is the degenerate Connector for plain filesystem roots:
// every enumerated path is already a local file, so Materialize is the
// identity function. It lets MaterializeRoots and the CLI treat "a local
// root" and "a connector-backed source" through the same interface; the
// indexer itself takes plain root paths.
type LocalConnector struct {
	Roots []string
}

func (c *LocalConnector) Items(ctx context.Context) ([]Item, error) {
	items := make([]Item, len(c.Roots))
	for i, root := range c.Roots {
		items[i] = Item{ID: root, Source: "local", PathOrID: root}
	}
	return items, nil
}

func (c *LocalConnector) Materialize(ctx context.Context, item Item) (string, error) {
	return item.PathOrID, nil
}

// MaterializeRoots drains every Connector's Items and materializes each one
// to a local path, in connector order. This is the boundary between the
// Connector capability (§6) and Engine.Index's `roots []string` parameter:
// callers that only have local directories wrap them in a LocalConnector so
// a future non-local Connector can be dropped in without changing how
// Engine.Index is called.
func MaterializeRoots(ctx context.Context, connectors []Connector) ([]string, error) {
	var roots []string
	for _, c := range connectors {
		items, err := c.Items(ctx)
		if err != nil {
			return nil, fmt.Errorf("list connector items: %w", err)
		}
		for _, item := range items {
			path, err := c.Materialize(ctx, item)
			if err != nil {
				return nil, fmt.Errorf("materialize %s:%s: %w", item.Source, item.ID, err)
			}
			roots = append(roots, path)
		}
	}
	return roots, nil
}
