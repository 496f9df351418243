package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisitorRejectsNonPositivePeriod(t *testing.T) {
	for _, p := range []time.Duration{0, -time.Second} {
		_, err := newVisitor(p)
		assert.Error(t, err, "period %s", p)
	}
}

func TestVisitorWalksInAndOut(t *testing.T) {
	v, err := newVisitor(time.Second)
	require.NoError(t, err)

	v.start = time.Now()
	cm, err := v.Read()
	require.NoError(t, err)
	assert.InDelta(t, 300, cm, 10, "starts far away")

	v.start = time.Now().Add(-500 * time.Millisecond)
	cm, err = v.Read()
	require.NoError(t, err)
	assert.InDelta(t, 20, cm, 10, "closest at mid period")
}
