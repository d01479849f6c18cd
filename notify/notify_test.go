package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitterFansOutInEmissionOrder(t *testing.T) {
	a := &Record{}
	b := &Record{}
	e := NewEmitter(a)
	e.Attach(b)

	e.Success("created")
	e.Error("boom")
	e.Success("updated")

	for _, rec := range []*Record{a, b} {
		assert.Equal(t, []string{"created", "updated"}, rec.Successes)
		assert.Equal(t, []string{"boom"}, rec.Errors)
	}
}

func TestEmitterDetachStopsDelivery(t *testing.T) {
	a := &Record{}
	b := &Record{}
	e := NewEmitter(a, b)

	e.Success("first")
	e.Detach(a)
	e.Success("second")

	assert.Equal(t, []string{"first"}, a.Successes)
	assert.Equal(t, []string{"first", "second"}, b.Successes)
}

func TestEmitterWithNoSinksIsSafe(t *testing.T) {
	e := NewEmitter()
	assert.NotPanics(t, func() {
		e.Success("nobody listening")
		e.Error("still nobody")
	})
}
