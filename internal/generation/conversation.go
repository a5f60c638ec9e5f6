package generation

import "sync"

// Roles used in conversation turns.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// maxConversationTurns bounds the history kept per conversation.
const maxConversationTurns = 20

// Turn is one message of a conversation.
type Turn struct {
	Role string
	Text string
}

// Conversations keeps the recent turns of each conversation id so that
// stateless provider APIs can continue a conversation. It is safe for
// concurrent use. The zero value is ready to use.
type Conversations struct {
	mu    sync.Mutex
	turns map[string][]Turn
}

// History returns a copy of the turns recorded for id. An empty id has no
// history.
func (c *Conversations) History(id string) []Turn {
	if id == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Turn(nil), c.turns[id]...)
}

// Record appends a completed exchange to id. Nothing is kept for an empty id.
func (c *Conversations) Record(id, prompt, reply string) {
	if id == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.turns == nil {
		c.turns = make(map[string][]Turn)
	}
	turns := append(c.turns[id], Turn{Role: RoleUser, Text: prompt}, Turn{Role: RoleModel, Text: reply})
	if len(turns) > maxConversationTurns {
		turns = turns[len(turns)-maxConversationTurns:]
	}
	c.turns[id] = turns
}

// Forget drops the history of id.
func (c *Conversations) Forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.turns, id)
}
