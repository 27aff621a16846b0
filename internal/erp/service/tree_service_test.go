package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullTreeFromRoot(t *testing.T) {
	f := multiLevelFixture()
	svc := newTestServices(f)

	root := int64(1)
	nodes, err := svc.Tree.FullTree(context.Background(), &root, 0)
	require.NoError(t, err)

	// 1→10, 1→3, 10→11, 10→2, 11→4 共5条边
	require.Len(t, nodes, 5)

	first := nodes[0]
	assert.Equal(t, int64(1), first.ParentItemID)
	assert.Equal(t, 1, first.Level)
	assert.Equal(t, first.Level, first.Depth)
	assert.Equal(t, []string{"成品支架", "紧固件"}, first.NamePath)

	// 同层按子品目编码排序：RAW-020 在 SUB-050 前
	assert.Equal(t, "RAW-020", nodes[0].ChildItemCode)
	assert.Equal(t, "SUB-050", nodes[1].ChildItemCode)
	assert.Equal(t, 2, nodes[2].Level)

	var maxLevel int
	for _, n := range nodes {
		assert.False(t, n.Cycle)
		if n.Level > maxLevel {
			maxLevel = n.Level
		}
	}
	assert.Equal(t, 3, maxLevel)
}

func TestFullTreeAllRoots(t *testing.T) {
	f := multiLevelFixture()
	svc := newTestServices(f)

	nodes, err := svc.Tree.FullTree(context.Background(), nil, 0)
	require.NoError(t, err)
	// 只有品目1是顶层（从不作为子级出现）
	require.Len(t, nodes, 5)
	assert.Equal(t, int64(1), nodes[0].ParentItemID)
}

func TestFullTreeDepthLimit(t *testing.T) {
	f := multiLevelFixture()
	svc := newTestServices(f)

	root := int64(1)
	nodes, err := svc.Tree.FullTree(context.Background(), &root, 1)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	for _, n := range nodes {
		assert.Equal(t, 1, n.Level)
	}
}

func TestFullTreeCycleMarked(t *testing.T) {
	f := newFakeStore()
	f.addItem(1, "SUB-001", "组件A", "SEMI_FINISHED", "10")
	f.addItem(2, "SUB-002", "组件B", "SEMI_FINISHED", "20")
	f.addEdge(1, 2, "1", "0")
	f.addEdge(2, 1, "1", "0")
	svc := newTestServices(f)

	root := int64(1)
	nodes, err := svc.Tree.FullTree(context.Background(), &root, 0)
	require.NoError(t, err)

	// A→B 正常节点，B→A 标记环且不再下钻
	require.Len(t, nodes, 2)
	assert.False(t, nodes[0].Cycle)
	assert.True(t, nodes[1].Cycle)
	assert.Equal(t, int64(1), nodes[1].ChildItemID)
}

func TestFullTreeUnknownRoot(t *testing.T) {
	svc := newTestServices(newFakeStore())
	root := int64(42)
	_, err := svc.Tree.FullTree(context.Background(), &root, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}
