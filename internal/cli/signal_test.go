package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignalContext_Cancel(t *testing.T) {
	sc := NewSignalContext(context.Background())
	sc.Cancel()

	<-sc.Done()
	assert.Nil(t, sc.Signal())
}
