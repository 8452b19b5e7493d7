package bom

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ResolveTree returns the component tree of rootID up to MaxTreeDepth levels.
func (s *Service) ResolveTree(ctx context.Context, rootID uuid.UUID) ([]TreeNode, error) {
	return s.resolveTree(ctx, rootID, MaxTreeDepth)
}

// ComputeStats aggregates count, cost, depth and type counts over the resolved tree.
func (s *Service) ComputeStats(ctx context.Context, rootID uuid.UUID) (Stats, error) {
	tree, err := s.resolveTree(ctx, rootID, MaxTreeDepth)
	if err != nil {
		return Stats{}, err
	}
	return Summarize(tree), nil
}

// Summarize folds a resolved tree into Stats. Missing unit costs count as zero.
func Summarize(tree []TreeNode) Stats {
	stats := Stats{ComponentTypeCounts: map[string]int{}}
	total := accumulate(tree, &stats)
	stats.TotalCost = total.Round(2)
	return stats
}

func accumulate(nodes []TreeNode, stats *Stats) decimal.Decimal {
	total := decimal.Zero
	for _, n := range nodes {
		stats.TotalComponents++
		if n.Depth > stats.MaxDepth {
			stats.MaxDepth = n.Depth
		}
		stats.ComponentTypeCounts[n.ItemType]++
		unit := decimal.Zero
		if n.UnitCost.Valid {
			unit = n.UnitCost.Decimal
		}
		sub := accumulate(n.Children, stats)
		total = total.Add(n.Quantity.Mul(unit.Add(sub)))
	}
	return total
}

func (s *Service) resolveTree(ctx context.Context, rootID uuid.UUID, maxDepth int) ([]TreeNode, error) {
	ok, err := s.repo.ItemExists(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, rootID)
	}
	return s.expand(ctx, rootID, 0, maxDepth, map[uuid.UUID]struct{}{rootID: {}})
}

// expand builds the children of parentID. ancestors holds every item on the
// path from the root to parentID and is never mutated after the call.
func (s *Service) expand(ctx context.Context, parentID uuid.UUID, depth, maxDepth int, ancestors map[uuid.UUID]struct{}) ([]TreeNode, error) {
	if depth >= maxDepth {
		return []TreeNode{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lines, err := s.repo.ListChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Sequence < lines[j].Sequence })

	nodes := make([]TreeNode, len(lines))
	for i, line := range lines {
		if _, seen := ancestors[line.ComponentItemID]; seen {
			return nil, fmt.Errorf("%w: item %s reappears below %s", ErrCycleDetected, line.ComponentItemID, parentID)
		}
		nodes[i] = newTreeNode(line, depth+1)
	}

	fill := func(ctx context.Context, i int) error {
		path := make(map[uuid.UUID]struct{}, len(ancestors)+1)
		for id := range ancestors {
			path[id] = struct{}{}
		}
		path[nodes[i].ChildItemID] = struct{}{}
		children, err := s.expand(ctx, nodes[i].ChildItemID, depth+1, maxDepth, path)
		if err != nil {
			return err
		}
		nodes[i].Children = children
		return nil
	}

	if s.fanOut < 2 || len(nodes) < 2 {
		for i := range nodes {
			if err := fill(ctx, i); err != nil {
				return nil, err
			}
		}
		return nodes, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanOut)
	for i := range nodes {
		i := i
		g.Go(func() error { return fill(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return nodes, nil
}
