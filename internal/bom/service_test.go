package bom

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-bom/internal/platform/httpx"
)

func qty(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestResolveTreeEmptyAndMissing(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, ServiceConfig{})
	ctx := context.Background()

	leaf := repo.addItem("LEAF", "PURCHASE", 1)
	tree, err := svc.ResolveTree(ctx, leaf)
	require.NoError(t, err)
	require.NotNil(t, tree)
	require.Empty(t, tree)

	_, err = svc.ResolveTree(ctx, uuid.New())
	require.ErrorIs(t, err, ErrItemNotFound)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestAddComponentAssignsSequence(t *testing.T) {
	repo := newMemoryRepo()
	audit := &recordingAudit{}
	svc := NewService(repo, audit, ServiceConfig{})
	ctx := context.Background()

	root := repo.addItem("ROOT", "PRODUCTION", -1)
	kids := []uuid.UUID{
		repo.addItem("A", "PURCHASE", 1),
		repo.addItem("B", "PURCHASE", 2),
		repo.addItem("C", "PURCHASE", 3),
	}
	for i, kid := range kids {
		c, err := svc.AddComponent(ctx, AddComponentInput{ParentID: root, ComponentID: kid, Quantity: qty("1.5")})
		require.NoError(t, err)
		require.Equal(t, i+1, c.Sequence)
		require.Equal(t, DefaultUnit, c.Unit)
	}

	tree, err := svc.ResolveTree(ctx, root)
	require.NoError(t, err)
	require.Len(t, tree, 3)
	for i, node := range tree {
		require.Equal(t, kids[i], node.ChildItemID)
		require.Equal(t, root, node.ParentItemID)
		require.Equal(t, 1, node.Depth)
		require.NotNil(t, node.Children)
		require.Empty(t, node.Children)
	}
	require.Equal(t, []string{"bom:add", "bom:add", "bom:add"}, audit.actions())
}

func TestAddComponentRejections(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, ServiceConfig{})
	ctx := context.Background()

	a := repo.addItem("A", "PRODUCTION", -1)
	b := repo.addItem("B", "ASSEMBLY", -1)
	c := repo.addItem("C", "PURCHASE", 5)

	_, err := svc.AddComponent(ctx, AddComponentInput{ParentID: uuid.New(), ComponentID: uuid.New(), Quantity: qty("1")})
	require.ErrorIs(t, err, ErrParentNotFound)

	_, err = svc.AddComponent(ctx, AddComponentInput{ParentID: a, ComponentID: uuid.New(), Quantity: qty("1")})
	require.ErrorIs(t, err, ErrComponentNotFound)

	_, err = svc.AddComponent(ctx, AddComponentInput{ParentID: a, ComponentID: a, Quantity: qty("1")})
	require.ErrorIs(t, err, ErrSelfReference)
	require.ErrorIs(t, err, httpx.ErrInvalidOperation)

	_, err = svc.AddComponent(ctx, AddComponentInput{ParentID: a, ComponentID: b, Quantity: qty("2")})
	require.NoError(t, err)
	_, err = svc.AddComponent(ctx, AddComponentInput{ParentID: a, ComponentID: b, Quantity: qty("3")})
	require.ErrorIs(t, err, ErrDuplicateComponent)
	require.ErrorIs(t, err, httpx.ErrConflict)

	_, err = svc.AddComponent(ctx, AddComponentInput{ParentID: b, ComponentID: c, Quantity: qty("1")})
	require.NoError(t, err)

	// direct and transitive loops
	_, err = svc.AddComponent(ctx, AddComponentInput{ParentID: b, ComponentID: a, Quantity: qty("1")})
	require.ErrorIs(t, err, ErrCycleDetected)
	_, err = svc.AddComponent(ctx, AddComponentInput{ParentID: c, ComponentID: a, Quantity: qty("1")})
	require.ErrorIs(t, err, ErrCycleDetected)

	lines, err := svc.ListComponents(ctx, c)
	require.NoError(t, err)
	require.Empty(t, lines)
}

func TestAddComponentQuantityBounds(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, ServiceConfig{})
	ctx := context.Background()
	parent := repo.addItem("P", "PRODUCTION", -1)

	for _, bad := range []string{"0", "-1", "9999.0001", "10000"} {
		child := repo.addItem("X-"+bad, "PURCHASE", 1)
		_, err := svc.AddComponent(ctx, AddComponentInput{ParentID: parent, ComponentID: child, Quantity: qty(bad)})
		require.ErrorIs(t, err, ErrInvalidQuantity, bad)
		require.ErrorIs(t, err, httpx.ErrValidation, bad)
	}

	child := repo.addItem("MAX", "PURCHASE", 1)
	c, err := svc.AddComponent(ctx, AddComponentInput{ParentID: parent, ComponentID: child, Quantity: qty("9999")})
	require.NoError(t, err)
	require.True(t, c.Quantity.Equal(qty("9999")))
}

func TestSharedSubassemblyIsNotACycle(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, ServiceConfig{})
	ctx := context.Background()

	root := repo.addItem("R", "PRODUCTION", -1)
	a := repo.addItem("A", "ASSEMBLY", 1)
	b := repo.addItem("B", "ASSEMBLY", 1)
	shared := repo.addItem("S", "PURCHASE", 2)

	for _, edge := range [][2]uuid.UUID{{root, a}, {root, b}, {a, shared}, {b, shared}} {
		_, err := svc.AddComponent(ctx, AddComponentInput{ParentID: edge[0], ComponentID: edge[1], Quantity: qty("1")})
		require.NoError(t, err)
	}

	stats, err := svc.ComputeStats(ctx, root)
	require.NoError(t, err)
	require.Equal(t, 4, stats.TotalComponents)
	require.Equal(t, 2, stats.MaxDepth)
	require.Equal(t, map[string]int{"ASSEMBLY": 2, "PURCHASE": 2}, stats.ComponentTypeCounts)
	require.Equal(t, "6.00", stats.TotalCost.StringFixed(2))
}

func TestComputeStatsRollsUpCost(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, ServiceConfig{})
	ctx := context.Background()

	root := repo.addItem("R", "PRODUCTION", -1)
	a := repo.addItem("A", "ASSEMBLY", 100)
	b := repo.addItem("B", "PURCHASE", 10)
	repo.link(root, a, 2, 1)
	repo.link(a, b, 3, 1)

	stats, err := svc.ComputeStats(ctx, root)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalComponents)
	require.Equal(t, 2, stats.MaxDepth)
	require.True(t, stats.TotalCost.Equal(decimal.NewFromInt(260)), stats.TotalCost.String())
	require.Equal(t, map[string]int{"ASSEMBLY": 1, "PURCHASE": 1}, stats.ComponentTypeCounts)

	leaf, err := svc.ComputeStats(ctx, b)
	require.NoError(t, err)
	require.Equal(t, 0, leaf.TotalComponents)
	require.Equal(t, 0, leaf.MaxDepth)
	require.True(t, leaf.TotalCost.IsZero())
	require.Empty(t, leaf.ComponentTypeCounts)

	_, err = svc.ComputeStats(ctx, uuid.New())
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestComputeStatsTreatsMissingCostAsZero(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, ServiceConfig{})
	ctx := context.Background()

	root := repo.addItem("R", "PRODUCTION", -1)
	uncosted := repo.addItem("U", "ASSEMBLY", -1)
	leaf := repo.addItem("L", "PURCHASE", 0.125)
	repo.link(root, uncosted, 4, 1)
	repo.link(uncosted, leaf, 3, 1)

	stats, err := svc.ComputeStats(ctx, root)
	require.NoError(t, err)
	// 4 * (0 + 3 * 0.125) = 1.5
	require.Equal(t, "1.50", stats.TotalCost.StringFixed(2))
}

func TestResolveTreeTruncatesDeepChains(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, ServiceConfig{})
	ctx := context.Background()

	chain := make([]uuid.UUID, 16)
	for i := range chain {
		chain[i] = repo.addItem(fmt.Sprintf("L%02d", i), "ASSEMBLY", 1)
	}
	for i := 0; i < len(chain)-1; i++ {
		repo.link(chain[i], chain[i+1], 1, 1)
	}

	tree, err := svc.ResolveTree(ctx, chain[0])
	require.NoError(t, err)
	depth := 0
	nodes := tree
	for len(nodes) > 0 {
		require.Len(t, nodes, 1)
		depth++
		require.Equal(t, depth, nodes[0].Depth)
		nodes = nodes[0].Children
	}
	require.Equal(t, MaxTreeDepth, depth)
	require.NotNil(t, nodes)

	stats, err := svc.ComputeStats(ctx, chain[0])
	require.NoError(t, err)
	require.Equal(t, MaxTreeDepth, stats.TotalComponents)
	require.Equal(t, MaxTreeDepth, stats.MaxDepth)

	shallow, err := svc.resolveTree(ctx, chain[0], 3)
	require.NoError(t, err)
	require.Empty(t, shallow[0].Children[0].Children[0].Children)
}

func TestResolveTreeReportsStoredCycle(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, ServiceConfig{})
	ctx := context.Background()

	a := repo.addItem("A", "ASSEMBLY", 1)
	b := repo.addItem("B", "ASSEMBLY", 1)
	c := repo.addItem("C", "ASSEMBLY", 1)
	repo.link(a, b, 1, 1)
	repo.link(b, c, 1, 1)
	repo.link(c, a, 1, 1)

	_, err := svc.ResolveTree(ctx, a)
	require.ErrorIs(t, err, ErrCycleDetected)

	_, err = svc.ComputeStats(ctx, b)
	require.ErrorIs(t, err, ErrCycleDetected)
}

func TestResolveTreeFanOutKeepsOrder(t *testing.T) {
	repo := newMemoryRepo()
	ctx := context.Background()

	root := repo.addItem("R", "PRODUCTION", -1)
	for i := 0; i < 12; i++ {
		mid := repo.addItem(fmt.Sprintf("M%02d", i), "ASSEMBLY", float64(i))
		// descending sequences so store order differs from output order
		repo.link(root, mid, int64(i+1), 12-i)
		for j := 0; j < 3; j++ {
			leaf := repo.addItem(fmt.Sprintf("M%02d-L%d", i, j), "PURCHASE", 1)
			repo.link(mid, leaf, 1, 1)
		}
	}

	sequential, err := NewService(repo, nil, ServiceConfig{}).ResolveTree(ctx, root)
	require.NoError(t, err)
	parallel, err := NewService(repo, nil, ServiceConfig{FanOut: 4}).ResolveTree(ctx, root)
	require.NoError(t, err)

	require.Equal(t, sequential, parallel)
	for i := 1; i < len(parallel); i++ {
		require.Less(t, parallel[i-1].Sequence, parallel[i].Sequence)
	}
	for _, node := range parallel {
		require.Len(t, node.Children, 3)
		require.Equal(t, []string{node.SKU + "-L0", node.SKU + "-L1", node.SKU + "-L2"},
			[]string{node.Children[0].SKU, node.Children[1].SKU, node.Children[2].SKU})
	}
}

func TestUpdateComponent(t *testing.T) {
	repo := newMemoryRepo()
	audit := &recordingAudit{}
	svc := NewService(repo, audit, ServiceConfig{})
	ctx := context.Background()

	parent := repo.addItem("P", "PRODUCTION", -1)
	other := repo.addItem("O", "PRODUCTION", -1)
	child := repo.addItem("C", "PURCHASE", 1)
	edge, err := svc.AddComponent(ctx, AddComponentInput{ParentID: parent, ComponentID: child, Quantity: qty("1")})
	require.NoError(t, err)

	newQty := qty("4.25")
	unit := "KG"
	seq := 7
	notes := "  weigh twice  "
	updated, err := svc.UpdateComponent(ctx, UpdateComponentInput{
		ParentID: parent, EdgeID: edge.ID, Quantity: &newQty, Unit: &unit, Sequence: &seq, Notes: &notes,
	})
	require.NoError(t, err)
	require.True(t, updated.Quantity.Equal(newQty))
	require.Equal(t, "KG", updated.Unit)
	require.Equal(t, 7, updated.Sequence)
	require.Equal(t, "weigh twice", *updated.Notes)

	zero := qty("0")
	_, err = svc.UpdateComponent(ctx, UpdateComponentInput{ParentID: parent, EdgeID: edge.ID, Quantity: &zero})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	badSeq := 0
	_, err = svc.UpdateComponent(ctx, UpdateComponentInput{ParentID: parent, EdgeID: edge.ID, Sequence: &badSeq})
	require.ErrorIs(t, err, ErrInvalidSequence)

	_, err = svc.UpdateComponent(ctx, UpdateComponentInput{ParentID: other, EdgeID: edge.ID, Quantity: &newQty})
	require.ErrorIs(t, err, ErrEdgeNotFound)

	require.Equal(t, []string{"bom:add", "bom:update"}, audit.actions())
}

func TestRemoveComponentKeepsDescendants(t *testing.T) {
	repo := newMemoryRepo()
	audit := &recordingAudit{}
	svc := NewService(repo, audit, ServiceConfig{})
	ctx := context.Background()

	root := repo.addItem("R", "PRODUCTION", -1)
	sub := repo.addItem("S", "ASSEMBLY", -1)
	leaf := repo.addItem("L", "PURCHASE", 1)
	top, err := svc.AddComponent(ctx, AddComponentInput{ParentID: root, ComponentID: sub, Quantity: qty("1")})
	require.NoError(t, err)
	_, err = svc.AddComponent(ctx, AddComponentInput{ParentID: sub, ComponentID: leaf, Quantity: qty("2")})
	require.NoError(t, err)

	err = svc.RemoveComponent(ctx, sub, top.ID, "user-1")
	require.ErrorIs(t, err, ErrEdgeNotFound)

	err = svc.RemoveComponent(ctx, root, top.ID, "user-1")
	require.NoError(t, err)

	tree, err := svc.ResolveTree(ctx, root)
	require.NoError(t, err)
	require.Empty(t, tree)

	lines, err := svc.ListComponents(ctx, sub)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, leaf, lines[0].ComponentItemID)

	err = svc.RemoveComponent(ctx, root, uuid.New(), "user-1")
	require.True(t, errors.Is(err, httpx.ErrNotFound))

	require.Equal(t, []string{"bom:add", "bom:add", "bom:remove"}, audit.actions())
	require.Equal(t, "user-1", audit.entries[2].ActorID)
}

func TestListComponentsMissingParent(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, ServiceConfig{})
	_, err := svc.ListComponents(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestAddComponentLeavesNoPartialEdge(t *testing.T) {
	repo := newMemoryRepo()
	audit := &recordingAudit{}
	svc := NewService(repo, audit, ServiceConfig{})
	ctx := context.Background()

	parent := repo.addItem("P", "PRODUCTION", -1)
	first := repo.addItem("A", "PURCHASE", 1)
	second := repo.addItem("B", "PURCHASE", 1)
	_, err := svc.AddComponent(ctx, AddComponentInput{ParentID: parent, ComponentID: first, Quantity: qty("1")})
	require.NoError(t, err)

	cases := []struct {
		name   string
		inject func(err error)
	}{
		{"insert", func(err error) { repo.failInsert = err }},
		{"sequence", func(err error) { repo.failSequence = err }},
		{"walk", func(err error) { repo.failChildren = err }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			boom := errors.New("connection reset by peer")
			tc.inject(boom)
			defer tc.inject(nil)

			_, err := svc.AddComponent(ctx, AddComponentInput{ParentID: parent, ComponentID: second, Quantity: qty("2")})
			require.ErrorIs(t, err, boom)

			lines, err := svc.ListComponents(ctx, parent)
			require.NoError(t, err)
			require.Len(t, lines, 1)
			require.Equal(t, first, lines[0].ComponentItemID)
		})
	}

	c, err := svc.AddComponent(ctx, AddComponentInput{ParentID: parent, ComponentID: second, Quantity: qty("2")})
	require.NoError(t, err)
	require.Equal(t, 2, c.Sequence)
	require.Equal(t, []string{"bom:add", "bom:add"}, audit.actions())
}

func TestConcurrentOppositeAddsKeepGraphAcyclic(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, ServiceConfig{})
	ctx := context.Background()

	a := repo.addItem("A", "ASSEMBLY", 1)
	b := repo.addItem("B", "ASSEMBLY", 1)

	errs := make(chan error, 2)
	start := make(chan struct{})
	for _, edge := range [][2]uuid.UUID{{a, b}, {b, a}} {
		go func(parent, component uuid.UUID) {
			<-start
			_, err := svc.AddComponent(ctx, AddComponentInput{ParentID: parent, ComponentID: component, Quantity: qty("1")})
			errs <- err
		}(edge[0], edge[1])
	}
	close(start)

	var failures []error
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			failures = append(failures, err)
		}
	}
	require.Len(t, failures, 1)
	require.ErrorIs(t, failures[0], ErrCycleDetected)
	require.Equal(t, int64(2), repo.graphLocks.Load())

	_, err := svc.ResolveTree(ctx, a)
	require.NoError(t, err)
	_, err = svc.ResolveTree(ctx, b)
	require.NoError(t, err)
}
