package errprocess

import (
	"errors"
	"testing"

	"smart_talk_service/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	logger.SetNewNop()
	base := errors.New("boom")

	err := Wrap("save message", base)
	assert.ErrorIs(t, err, base)
	assert.EqualError(t, err, "save message: boom")

	assert.NoError(t, Wrap("save message", nil))
}
