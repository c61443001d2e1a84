package notify

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

type recordingSink struct {
	mu          sync.Mutex
	byRecipient map[string][]string
}

func (s *recordingSink) Notify(ctx context.Context, in ports.NotifyInput) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byRecipient == nil {
		s.byRecipient = make(map[string][]string)
	}
	s.byRecipient[in.RecipientUserID] = append(s.byRecipient[in.RecipientUserID], in.Title)
	return &domain.Notification{}, nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, titles := range s.byRecipient {
		n += len(titles)
	}
	return n
}

func waitFor(t *testing.T, want int, s *recordingSink) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.count() < want {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d deliveries, got %d", want, s.count())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDispatcher_PerRecipientOrdering(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(4, sink, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	const perUser = 20
	recipients := []string{"usr_a", "usr_b", "usr_c"}
	for i := 0; i < perUser; i++ {
		for _, r := range recipients {
			d.Enqueue(ports.NotifyInput{
				RecipientUserID: r,
				Kind:            domain.NotifReminder,
				Title:           fmt.Sprintf("msg-%03d", i),
			})
		}
	}

	waitFor(t, perUser*len(recipients), sink)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	for _, r := range recipients {
		titles := sink.byRecipient[r]
		for i, title := range titles {
			if want := fmt.Sprintf("msg-%03d", i); title != want {
				t.Fatalf("recipient %s delivery %d: got %s, want %s", r, i, title, want)
			}
		}
	}
}

func TestDispatcher_ShardIsDeterministic(t *testing.T) {
	d := NewDispatcher(4, &recordingSink{}, zerolog.Nop())
	for _, id := range []string{"usr_a", "usr_b", "", "usr_superadmin"} {
		first := d.shardIndex(id)
		for i := 0; i < 10; i++ {
			if got := d.shardIndex(id); got != first {
				t.Fatalf("shard for %q moved from %d to %d", id, first, got)
			}
		}
	}
}
