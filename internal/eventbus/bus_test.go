package eventbus

import "testing"

func TestPublishFanOut(t *testing.T) {
	t.Parallel()
	b := New[int]()

	ch1, unsub1 := b.Subscribe(4)
	ch2, unsub2 := b.Subscribe(4)
	defer unsub1()
	defer unsub2()

	b.Publish(1)
	b.Publish(2)

	for _, ch := range []<-chan int{ch1, ch2} {
		if got := <-ch; got != 1 {
			t.Fatalf("first event = %d, want 1", got)
		}
		if got := <-ch; got != 2 {
			t.Fatalf("second event = %d, want 2", got)
		}
	}
}

func TestPublishDropsWhenFull(t *testing.T) {
	t.Parallel()
	b := New[int]()
	ch, unsub := b.Subscribe(1)
	defer unsub()

	b.Publish(1)
	b.Publish(2) // buffer full, dropped
	b.Publish(3) // dropped

	if got := <-ch; got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
	select {
	case v := <-ch:
		t.Fatalf("unexpected buffered event %d", v)
	default:
	}
}

func TestUnsubscribe(t *testing.T) {
	t.Parallel()
	b := New[string]()
	ch, unsub := b.Subscribe(1)

	unsub()
	unsub() // idempotent

	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}

	// Publishing after unsubscribe must not panic or deliver.
	b.Publish("late")
}
