package transformer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whit3rabbit/jsmixer/internal/ast"
	"github.com/whit3rabbit/jsmixer/internal/obferrors"
	"github.com/whit3rabbit/jsmixer/internal/stage"
	"github.com/whit3rabbit/jsmixer/internal/visitor"
)

// fakeNode is a minimal NodeTransformer for scheduler tests: it is active
// on exactly one stage and depends on a fixed list of names.
type fakeNode struct {
	name    Name
	deps    []Name
	active  stage.NodeStage
	onEnter func(n ast.Node, parent ast.Node) visitor.Result
}

func (f *fakeNode) Name() Name           { return f.name }
func (f *fakeNode) Dependencies() []Name { return f.deps }
func (f *fakeNode) Prepare(stage.NodeStage, *ast.Program) error  { return nil }
func (f *fakeNode) Finalize(stage.NodeStage, *ast.Program) error { return nil }
func (f *fakeNode) NodeVisitor(s stage.NodeStage) (visitor.Visitor, bool) {
	if s != f.active {
		return visitor.Visitor{}, false
	}
	enter := f.onEnter
	if enter == nil {
		enter = func(n ast.Node, _ ast.Node) visitor.Result { return visitor.SameResult() }
	}
	return visitor.Visitor{Enter: enter}, true
}

func registryWith(transformers ...*fakeNode) *Registry {
	r := NewRegistry()
	for _, tr := range transformers {
		tr := tr
		r.RegisterNode(tr.name, func() NodeTransformer { return tr })
	}
	return r
}

func TestScheduleNodeStage_BatchesRespectDependencyOrder(t *testing.T) {
	a := &fakeNode{name: "A", active: stage.Preparing}
	b := &fakeNode{name: "B", deps: []Name{"A"}, active: stage.Preparing}
	c := &fakeNode{name: "C", deps: []Name{"A"}, active: stage.Preparing}
	d := &fakeNode{name: "D", deps: []Name{"B", "C"}, active: stage.Preparing}

	reg := registryWith(a, b, c, d)
	batches, _, err := ScheduleNodeStage(reg, stage.Preparing)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, []Name{"A"}, batches[0].Names)
	assert.ElementsMatch(t, []Name{"B", "C"}, batches[1].Names)
	assert.Equal(t, []Name{"D"}, batches[2].Names)
}

func TestScheduleNodeStage_InactiveDependencyDroppedSilently(t *testing.T) {
	b := &fakeNode{name: "B", deps: []Name{"A"}, active: stage.Preparing}
	// "A" is never registered at all: B's dependency on it must be pruned,
	// not treated as an error.
	reg := registryWith(b)

	batches, _, err := ScheduleNodeStage(reg, stage.Preparing)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, []Name{"B"}, batches[0].Names)
}

func TestScheduleNodeStage_OnlyActiveTransformersScheduled(t *testing.T) {
	a := &fakeNode{name: "A", active: stage.Preparing}
	b := &fakeNode{name: "B", active: stage.RenameIdentifiers}

	reg := registryWith(a, b)
	batches, _, err := ScheduleNodeStage(reg, stage.Preparing)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, []Name{"A"}, batches[0].Names)
}

func TestScheduleNodeStage_CycleFails(t *testing.T) {
	a := &fakeNode{name: "A", deps: []Name{"B"}, active: stage.Preparing}
	b := &fakeNode{name: "B", deps: []Name{"A"}, active: stage.Preparing}

	reg := registryWith(a, b)
	_, _, err := ScheduleNodeStage(reg, stage.Preparing)
	require.Error(t, err)
	var cycleErr *obferrors.ScheduleCycle
	require.ErrorAs(t, err, &cycleErr)
	assert.ElementsMatch(t, []string{"A", "B"}, cycleErr.Transformers)
}

func TestScheduleNodeStage_DeterministicAcrossRuns(t *testing.T) {
	build := func() *Registry {
		return registryWith(
			&fakeNode{name: "A", active: stage.Preparing},
			&fakeNode{name: "B", deps: []Name{"A"}, active: stage.Preparing},
			&fakeNode{name: "C", deps: []Name{"A"}, active: stage.Preparing},
		)
	}

	batches1, _, err := ScheduleNodeStage(build(), stage.Preparing)
	require.NoError(t, err)
	batches2, _, err := ScheduleNodeStage(build(), stage.Preparing)
	require.NoError(t, err)

	require.Len(t, batches1, len(batches2))
	for i := range batches1 {
		assert.Equal(t, batches1[i].Names, batches2[i].Names)
	}
}

func TestScheduleCodeStage_ComposesLeftToRight(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCode(HashbangStripper, func() CodeTransformer {
		return &fakeCode{name: HashbangStripper, active: stage.PreparingTransformers, fn: func(s string) (string, error) {
			return s + "-stripped", nil
		}}
	})
	reg.RegisterCode(HashbangRestorer, func() CodeTransformer {
		return &fakeCode{name: HashbangRestorer, deps: []Name{HashbangStripper}, active: stage.PreparingTransformers, fn: func(s string) (string, error) {
			return s + "-restored", nil
		}}
	})

	batches, _, err := ScheduleCodeStage(reg, stage.PreparingTransformers)
	require.NoError(t, err)
	require.Len(t, batches, 2)

	out, err := batches[0].Apply("src")
	require.NoError(t, err)
	out, err = batches[1].Apply(out)
	require.NoError(t, err)
	assert.Equal(t, "src-stripped-restored", out)
}

type fakeCode struct {
	name   Name
	deps   []Name
	active stage.CodeStage
	fn     func(string) (string, error)
}

func (f *fakeCode) Name() Name           { return f.name }
func (f *fakeCode) Dependencies() []Name { return f.deps }
func (f *fakeCode) Prepare(stage.CodeStage) error  { return nil }
func (f *fakeCode) Finalize(stage.CodeStage) error { return nil }
func (f *fakeCode) CodeFunc(s stage.CodeStage) (func(string) (string, error), bool) {
	if s != f.active {
		return nil, false
	}
	return f.fn, true
}
