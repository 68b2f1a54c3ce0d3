package handler

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestHandlerRunsInOrder(t *testing.T) {
	h := New(zaptest.NewLogger(t))
	defer h.Close()

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		assert.True(t, h.Post(func() { got = append(got, i) }))
	}
	h.Call(func() {})

	want := make([]int, 100)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, got)
}

func TestHandlerPostFromHandler(t *testing.T) {
	h := New(zaptest.NewLogger(t))
	defer h.Close()

	var order []string
	done := make(chan struct{})
	h.Post(func() {
		order = append(order, "outer")
		h.Post(func() {
			order = append(order, "inner")
			close(done)
		})
		order = append(order, "outer done")
	})
	<-done
	assert.Equal(t, []string{"outer", "outer done", "inner"}, order)
}

func TestHandlerConcurrentPosters(t *testing.T) {
	h := New(zaptest.NewLogger(t))
	defer h.Close()

	count := 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.Post(func() { count++ })
			}
		}()
	}
	wg.Wait()
	h.Call(func() {})
	assert.Equal(t, 800, count)
}

func TestHandlerClose(t *testing.T) {
	h := New(zaptest.NewLogger(t))

	ran := 0
	for i := 0; i < 10; i++ {
		h.Post(func() { ran++ })
	}
	h.Close()
	assert.Equal(t, 10, ran)

	assert.False(t, h.Post(func() { ran++ }))
	assert.False(t, h.Call(func() { ran++ }))
	assert.Equal(t, 10, ran)

	// closing twice is harmless.
	h.Close()
}
