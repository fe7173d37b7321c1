package mtrace

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewErrorMessage(t *testing.T) {
	err := NewError("Start", CodeAlreadyActive, "a trace session is already active")
	assert.Equal(t, "Start", err.Op)
	assert.Equal(t, CodeAlreadyActive, err.Code)
	assert.Equal(t, "mtrace: Start: a trace session is already active", err.Error())
}

func TestNewErrorFallsBackToCodeAsMessage(t *testing.T) {
	err := NewError("Stop", CodeNotActive, "")
	assert.Equal(t, "mtrace: Stop: not active", err.Error())
}

func TestWrapErrorMapsErrno(t *testing.T) {
	err := WrapError("WriteSink", CodeSinkWriteFailed, syscall.ENOSPC)
	assert.Equal(t, syscall.ENOSPC, err.Errno)
	assert.True(t, errors.Is(err, syscall.ENOSPC))
}

func TestWrapErrorNilReturnsNil(t *testing.T) {
	assert.Nil(t, WrapError("Start", CodeSinkOpenFailed, nil))
}

func TestErrorIsComparesByCode(t *testing.T) {
	a := NewError("Start", CodeAlreadyActive, "first")
	b := NewError("Start", CodeAlreadyActive, "second message, different text")
	assert.True(t, errors.Is(a, b))

	c := NewError("Stop", CodeNotActive, "third")
	assert.False(t, errors.Is(a, c))
}

func TestIsCode(t *testing.T) {
	err := NewError("Start", CodeUnsupportedClock, "degraded")
	assert.True(t, IsCode(err, CodeUnsupportedClock))
	assert.False(t, IsCode(err, CodeNotActive))
	assert.False(t, IsCode(nil, CodeNotActive))
}
