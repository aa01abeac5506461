package chat

import "chatwidget/internal/model"

// messageRing keeps the most recent messages of a conversation.
type messageRing struct {
	data   []*model.Message
	start  int
	length int
}

func newMessageRing(capacity int) *messageRing {
	if capacity <= 0 {
		return &messageRing{}
	}
	return &messageRing{data: make([]*model.Message, capacity)}
}

func (r *messageRing) push(msg *model.Message) {
	if len(r.data) == 0 {
		return
	}
	idx := (r.start + r.length) % len(r.data)
	r.data[idx] = msg
	if r.length < len(r.data) {
		r.length++
		return
	}
	r.start = (r.start + 1) % len(r.data)
}

// snapshot copies the messages oldest first.
func (r *messageRing) snapshot() []model.Message {
	if r.length == 0 {
		return nil
	}
	result := make([]model.Message, r.length)
	for i := 0; i < r.length; i++ {
		result[i] = *r.data[(r.start+i)%len(r.data)]
	}
	return result
}
