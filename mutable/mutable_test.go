package mutable_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pipelined/burst/mutable"
)

// mutableMock used to set up test cases for mutators
type mutableMock struct {
	mutable.Context
	value      int
	operations int
	expected   int
}

// AddDelta is a mutation closure to mutable.value.
func (m *mutableMock) AddDelta(delta int) mutable.Mutation {
	return m.Context.Mutate(func() error {
		m.value += delta
		return nil
	})
}

func TestPutMutations(t *testing.T) {
	tests := []struct {
		mocks []*mutableMock
	}{
		{
			mocks: []*mutableMock{
				{Context: mutable.Mutable(), operations: 1, expected: 10},
			},
		},
		{
			mocks: []*mutableMock{
				{Context: mutable.Mutable(), operations: 3, expected: 30},
				{Context: mutable.Mutable(), operations: 4, expected: 40},
			},
		},
	}

	for _, test := range tests {
		var mutations mutable.Mutations
		for _, m := range test.mocks {
			for j := 0; j < m.operations; j++ {
				mutations = mutations.Put(m.AddDelta(10))
			}
		}
		for _, m := range test.mocks {
			assert.Nil(t, mutations.ApplyTo(m.Context))
			assert.Equal(t, m.expected, m.value)
			assert.True(t, m.IsMutable())
		}
		assert.Empty(t, mutations)
	}
}

func TestAppendDetachMutations(t *testing.T) {
	m1 := &mutableMock{Context: mutable.Mutable()}
	m2 := &mutableMock{Context: mutable.Mutable()}
	var ms1, ms2 mutable.Mutations
	ms1 = ms1.Put(m1.AddDelta(1))
	ms2 = ms2.Put(m1.AddDelta(2)).Put(m2.AddDelta(3))

	all := ms1.Append(ms2)
	d := all.Detach(m1.Context)
	assert.Nil(t, all.ApplyTo(m1.Context))
	assert.Equal(t, 0, m1.value)
	assert.Nil(t, d.ApplyTo(m1.Context))
	assert.Equal(t, 3, m1.value)
	assert.Nil(t, all.ApplyTo(m2.Context))
	assert.Equal(t, 3, m2.value)
	assert.Nil(t, all.Detach(m2.Context))
}

func TestApplyError(t *testing.T) {
	errMutation := errors.New("mutation failed")
	c := mutable.Mutable()
	var calls int
	var ms mutable.Mutations
	ms = ms.Put(c.Mutate(func() error { return errMutation }))
	ms = ms.Put(c.Mutate(func() error {
		calls++
		return nil
	}))
	assert.Equal(t, errMutation, ms.ApplyTo(c))
	assert.Equal(t, 0, calls)
	assert.Nil(t, ms.ApplyTo(c))
}

func TestMutability(t *testing.T) {
	assert.False(t, mutable.Immutable().IsMutable())
	assert.True(t, mutable.Mutable().IsMutable())
	assert.NotEqual(t, mutable.Mutable(), mutable.Mutable())
	assert.Equal(t, "immutable", mutable.Immutable().String())
	assert.Panics(t, func() {
		mutable.Immutable().Mutate(func() error { return nil })
	})
	var ms mutable.Mutations
	assert.Nil(t, ms.Put(mutable.Mutation{}))
}

func TestPusher(t *testing.T) {
	p := mutable.NewPusher()
	c := mutable.Mutable()
	d := mutable.NewDestination()
	p.AddDestination(c, d)

	var v int
	inc := func() error {
		v++
		return nil
	}
	assert.Nil(t, p.Put(c.Mutate(inc)))
	p.Push(context.Background())
	// destination is busy, mutations are merged.
	assert.Nil(t, p.Put(c.Mutate(inc)))
	p.Push(context.Background())

	ms := <-d
	assert.Nil(t, ms.ApplyTo(c))
	assert.Equal(t, 2, v)

	err := p.Put(mutable.Mutable().Mutate(inc))
	assert.Equal(t, mutable.ErrUnknownContext, err)
}
