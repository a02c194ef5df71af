package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/debtflow/engine/pkg/identity"
	"github.com/debtflow/engine/pkg/models"
)

func msg(from, to models.AgentRole, typ models.MessageType) models.AgentMessage {
	return models.AgentMessage{From: from, To: to, Type: typ}
}

func TestPublishDeliversToRoleSubscriber(t *testing.T) {
	b := New()
	var got []models.AgentMessage
	b.Subscribe(models.RoleCritic, func(m models.AgentMessage) { got = append(got, m) })

	b.Publish(msg(models.RoleScanner, models.RoleCritic, models.MessageFinding))
	b.Publish(msg(models.RoleScanner, models.RolePlanner, models.MessageFinding))

	require.Len(t, got, 1)
	require.Equal(t, models.RoleCritic, got[0].To)
}

func TestPublishBroadcastDeliversToEverySubscriber(t *testing.T) {
	b := New()
	var criticSaw, plannerSaw int
	b.Subscribe(models.RoleCritic, func(models.AgentMessage) { criticSaw++ })
	b.Subscribe(models.RolePlanner, func(models.AgentMessage) { plannerSaw++ })

	b.Publish(msg(models.RoleArchitect, models.RoleBroadcast, models.MessageEscalate))

	require.Equal(t, 1, criticSaw)
	require.Equal(t, 1, plannerSaw)
}

func TestSubscriberPanicDoesNotPropagate(t *testing.T) {
	b := New()
	b.Subscribe(models.RoleCritic, func(models.AgentMessage) { panic("boom") })

	require.NotPanics(t, func() {
		b.Publish(msg(models.RoleScanner, models.RoleCritic, models.MessageFinding))
	})
}

func TestGetMessagesFiltersAndPreservesPublishOrder(t *testing.T) {
	b := New()
	m1 := b.Publish(msg(models.RoleScanner, models.RoleCritic, models.MessageFinding))
	time.Sleep(time.Millisecond)
	b.Publish(msg(models.RoleArchitect, models.RoleCritic, models.MessageFinding))
	time.Sleep(time.Millisecond)
	b.Publish(msg(models.RoleScanner, models.RolePlanner, models.MessageFinding))

	got := b.GetMessages(Filter{From: models.RoleScanner})
	require.Len(t, got, 2)
	require.Equal(t, m1.ID, got[0].ID)
}

func TestGetThreadFollowsReplies(t *testing.T) {
	b := New()
	f := models.Finding{ID: identity.New()}
	root := b.Publish(models.AgentMessage{
		From: models.RoleScanner, To: models.RoleCritic, Type: models.MessageFinding,
		Content: models.MessageContent{Finding: &f},
	})
	reply := b.Publish(models.AgentMessage{
		From: models.RoleCritic, To: models.RoleScanner, Type: models.MessageChallenge,
		InReplyTo: root.ID,
	})
	unrelated := b.Publish(msg(models.RoleArchitect, models.RolePlanner, models.MessageFinding))

	thread := b.GetThread(f.ID)
	ids := map[identity.ID]bool{}
	for _, m := range thread {
		ids[m.ID] = true
	}
	require.True(t, ids[root.ID])
	require.True(t, ids[reply.ID])
	require.False(t, ids[unrelated.ID])
}
