package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotel_concierge/src/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNode struct {
	name     string
	typ      NodeType
	complete bool
	err      error
	calls    int
}

func (s *stubNode) Execute(_ context.Context, turn *Turn) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	turn.Reply += s.name + ";"
	if s.complete {
		turn.Complete = true
	}
	return nil
}

func (s *stubNode) GetName() string    { return s.name }
func (s *stubNode) GetType() NodeType { return s.typ }

func newTurn() *Turn {
	return NewTurn("conv", "user", "hello", model.LanguageEnglish, "/", nil, time.Now())
}

func TestPipelineRunsNodesInOrder(t *testing.T) {
	ctx := context.Background()
	a := &stubNode{name: "a", typ: NodeTypeNLU}
	b := &stubNode{name: "b", typ: NodeTypeResponse}
	p, err := NewPipeline(ctx, a, b)
	require.NoError(t, err)

	out, err := p.Execute(ctx, newTurn())
	require.NoError(t, err)
	assert.Equal(t, "a;b;", out.Reply)
	assert.Equal(t, []string{"a", "b"}, out.ExecutionPath)
	assert.Len(t, p.Nodes(), 2)
}

func TestPipelineSkipsToRecordOnceComplete(t *testing.T) {
	ctx := context.Background()
	command := &stubNode{name: "command", typ: NodeTypeCommand, complete: true}
	response := &stubNode{name: "response", typ: NodeTypeResponse}
	record := &stubNode{name: "record", typ: NodeTypeRecord}
	p, err := NewPipeline(ctx, command, response, record)
	require.NoError(t, err)

	out, err := p.Execute(ctx, newTurn())
	require.NoError(t, err)
	assert.Equal(t, "command;record;", out.Reply)
	assert.Equal(t, 0, response.calls)
	assert.Equal(t, 1, record.calls)
}

func TestPipelineErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewPipeline(ctx)
	assert.Error(t, err)
	_, err = NewPipeline(ctx, &stubNode{typ: NodeTypeNLU})
	assert.Error(t, err)

	boom := errors.New("boom")
	p, err := NewPipeline(ctx, &stubNode{name: "bad", typ: NodeTypeNLU, err: boom})
	require.NoError(t, err)
	_, err = p.Execute(ctx, newTurn())
	assert.ErrorContains(t, err, boom.Error())

	_, err = p.Execute(ctx, nil)
	assert.Error(t, err)
}
