package container

import (
	"context"
	"testing"

	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter interface {
	Greet() string
}

type english struct{}

func (english) Greet() string { return "hello" }

func TestNew_RegistersAndResolves(t *testing.T) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	id := uuid.NewString()

	c, err := New(id, logger)
	require.NoError(t, err)
	require.NoError(t, ectoinject.RegisterInstance[greeter](c, &english{}))

	ctx, err := ectoinject.SetActiveContainer(context.Background(), id)
	require.NoError(t, err)

	_, g, err := ectoinject.GetContext[greeter](ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", g.Greet())
}

func TestNew_ReturnsExistingContainer(t *testing.T) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	id := uuid.NewString()

	first, err := New(id, logger)
	require.NoError(t, err)
	second, err := New(id, logger)
	require.NoError(t, err)

	assert.Same(t, first, second)
}
