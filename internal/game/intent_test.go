package game

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntent_Idle(t *testing.T) {
	assert.True(t, Intent{}.Idle())
	assert.False(t, Intent{Jump: true}.Idle())
	assert.False(t, Intent{AimDelta: -0.2}.Idle())
	assert.False(t, Intent{Fire: true}.Idle())
}

func TestMailbox_PollConsumes(t *testing.T) {
	var mb Mailbox
	_, ok := mb.Poll(Snapshot{}, 0)
	assert.False(t, ok)

	mb.Publish(Intent{Charging: true})
	mb.Publish(Intent{Fire: true})

	in, ok := mb.Poll(Snapshot{}, 0)
	assert.True(t, ok)
	assert.Equal(t, Intent{Fire: true}, in, "the newest intent wins")

	_, ok = mb.Poll(Snapshot{}, 0)
	assert.False(t, ok)
}

func TestMailbox_Reset(t *testing.T) {
	var mb Mailbox
	mb.Publish(Intent{Fire: true})
	mb.Reset()
	_, ok := mb.Poll(Snapshot{}, 0)
	assert.False(t, ok)
}

func TestMailbox_ConcurrentPublish(t *testing.T) {
	var (
		mb Mailbox
		wg sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				mb.Publish(Intent{AimDelta: 1})
			}
		}()
	}
	polled := 0
	for i := 0; i < 100; i++ {
		if _, ok := mb.Poll(Snapshot{}, 0); ok {
			polled++
		}
	}
	wg.Wait()
	assert.LessOrEqual(t, polled, 100)
}

func TestScript_ReplaysInOrder(t *testing.T) {
	s := NewScript(Intent{MoveLeft: true}, Intent{Fire: true})
	assert.Equal(t, 2, s.Remaining())

	in, ok := s.Poll(Snapshot{}, 0)
	assert.True(t, ok)
	assert.True(t, in.MoveLeft)

	in, ok = s.Poll(Snapshot{}, 0)
	assert.True(t, ok)
	assert.True(t, in.Fire)

	_, ok = s.Poll(Snapshot{}, 0)
	assert.False(t, ok)
	assert.Zero(t, s.Remaining())
}

func TestIntentFunc(t *testing.T) {
	var got int
	var src IntentSource = IntentFunc(func(_ Snapshot, id int) (Intent, bool) {
		got = id
		return Intent{Jump: true}, true
	})
	in, ok := src.Poll(Snapshot{}, 3)
	assert.True(t, ok)
	assert.True(t, in.Jump)
	assert.Equal(t, 3, got)
}
